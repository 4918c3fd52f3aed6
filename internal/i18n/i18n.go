// Package i18n provides internationalization support.
package i18n

import (
	"fmt"
	"sync"
)

// Language represents a UI language.
type Language string

const (
	ES Language = "es"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = ES
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	ES: {
		// App
		"app_name":    "VAPAJOMI",
		"app_tooltip": "VAPAJOMI - asistente de voz",

		// Tray menu
		"tray_ready":              "Listo",
		"tray_listening":          "Escuchando...",
		"tray_processing":         "Procesando...",
		"tray_listen":             "Escuchar",
		"tray_listen_hint":        "Capturar un comando de voz",
		"tray_notifications":      "Notificaciones",
		"tray_notifications_hint": "Mostrar notificaciones",
		"tray_hotkey":             "Tecla rapida...",
		"tray_hotkey_hint":        "Cambiar la tecla para hablar",
		"tray_logout":             "Cerrar sesion",
		"tray_logout_hint":        "Volver a la pantalla de acceso",
		"tray_quit":               "Salir",
		"tray_quit_hint":          "Cerrar la aplicacion",

		// Login
		"login_title":          "Iniciar sesion",
		"login_email":          "Email",
		"login_password":       "Contraseña",
		"login_submit":         "Entrar",
		"login_create_account": "Crear cuenta",

		// Register
		"register_title":    "Crear cuenta",
		"register_name":     "Nombre",
		"register_confirm":  "Confirmar contraseña",
		"register_submit":   "Registrarse",
		"register_back":     "Volver al inicio de sesion",
		"register_success":  "Cuenta creada exitosamente",
		"register_save_err": "Error al guardar datos: %s",

		// Validation
		"field_name_required":     "El nombre es requerido",
		"field_email_required":    "El email es requerido",
		"field_password_required": "La contraseña es requerida",
		"field_password_short":    "La contraseña debe tener mínimo 6 caracteres",
		"field_password_mismatch": "Las contraseñas no coinciden",

		// Backend
		"error_backend": "Error: %s",

		// Home
		"home_welcome":             "Bienvenido",
		"home_welcome_name":        "Bienvenido, %s",
		"home_welcome_spoken":      "Bienvenido %s",
		"home_listening":           "Escuchando...",
		"home_heard":               "Escuche: %s",
		"home_listen":              "Escuchar",
		"home_logout":              "Cerrar sesion",
		"home_logging_out":         "Cerrando sesion",
		"home_tts_unsupported":     "Idioma no soportado",
		"home_permissions_all":     "Todos los permisos estan activos. En que puedo ayudarte?",
		"home_permissions_needed":  "Los permisos son necesarios para el funcionamiento de la aplicacion",
		"home_permissions_granted": "Permisos concedidos. Estoy listo para ayudarte",
		"home_permissions_denied":  "Algunos permisos fueron denegados. Algunas funciones podrian no estar disponibles",

		// Permission rationale
		"perm_title":           "Permisos necesarios",
		"perm_rationale":       "VAPAJOMI necesita acceso a:",
		"perm_accept":          "Aceptar",
		"perm_cancel":          "Cancelar",
		"perm_ask":             "¿Permitir acceso a %s?",
		"perm_record_audio":    "Microfono: para comandos de voz",
		"perm_camera":          "Camara: para detectar obstaculos",
		"perm_read_contacts":   "Contactos: para hacer llamadas",
		"perm_call_phone":      "Telefono: para realizar llamadas",
		"perm_send_sms":        "SMS: para enviar mensajes",
		"perm_fine_location":   "Ubicacion: para navegacion",
		"perm_coarse_location": "Ubicacion aproximada: para navegacion",

		// Voice recognition
		"voice_unavailable":        "El reconocimiento de voz no esta disponible en este dispositivo",
		"voice_no_speech":          "No se detecto voz",
		"voice_err_audio":          "Error de audio",
		"voice_err_client":         "Error interno del cliente",
		"voice_err_permissions":    "Faltan permisos de microfono",
		"voice_err_network":        "Error de red",
		"voice_err_network_time":   "Tiempo de espera agotado",
		"voice_err_no_match":       "No entendi lo que dijiste",
		"voice_err_busy":           "El reconocedor esta ocupado",
		"voice_err_server":         "Error del servidor de voz",
		"voice_err_speech_timeout": "No se detecto voz",
		"voice_err_unknown":        "Error desconocido de reconocimiento",

		// Startup window
		"startup_status":      "Iniciando...",
		"startup_loading":     "Cargando modelo de voz...",
		"startup_downloading": "Descargando modelo de voz...",

		// Notifications
		"notify_error": "Error",
		"notify_ready": "VAPAJOMI esta listo",

		// Errors
		"error_model_load":      "No se pudo cargar el modelo de voz",
		"error_model_download":  "No se pudo descargar el modelo de voz",
		"error_hotkey_register": "No se pudo registrar la tecla rapida",
	},

	EN: {
		// App
		"app_name":    "VAPAJOMI",
		"app_tooltip": "VAPAJOMI - voice assistant",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_listening":          "Listening...",
		"tray_processing":         "Processing...",
		"tray_listen":             "Listen",
		"tray_listen_hint":        "Capture a voice command",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_hotkey":             "Hotkey...",
		"tray_hotkey_hint":        "Change the push-to-talk key",
		"tray_logout":             "Log out",
		"tray_logout_hint":        "Back to the login screen",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Login
		"login_title":          "Sign in",
		"login_email":          "Email",
		"login_password":       "Password",
		"login_submit":         "Sign in",
		"login_create_account": "Create account",

		// Register
		"register_title":    "Create account",
		"register_name":     "Name",
		"register_confirm":  "Confirm password",
		"register_submit":   "Sign up",
		"register_back":     "Back to sign in",
		"register_success":  "Account created",
		"register_save_err": "Could not save data: %s",

		// Validation
		"field_name_required":     "Name is required",
		"field_email_required":    "Email is required",
		"field_password_required": "Password is required",
		"field_password_short":    "Password must be at least 6 characters",
		"field_password_mismatch": "Passwords do not match",

		// Backend
		"error_backend": "Error: %s",

		// Home
		"home_welcome":             "Welcome",
		"home_welcome_name":        "Welcome, %s",
		"home_welcome_spoken":      "Welcome %s",
		"home_listening":           "Listening...",
		"home_heard":               "I heard: %s",
		"home_listen":              "Listen",
		"home_logout":              "Log out",
		"home_logging_out":         "Logging out",
		"home_tts_unsupported":     "Language not supported",
		"home_permissions_all":     "All permissions are active. How can I help you?",
		"home_permissions_needed":  "Permissions are required for the application to work",
		"home_permissions_granted": "Permissions granted. I am ready to help you",
		"home_permissions_denied":  "Some permissions were denied. Some features may not be available",

		// Permission rationale
		"perm_title":           "Permissions required",
		"perm_rationale":       "VAPAJOMI needs access to:",
		"perm_accept":          "Accept",
		"perm_cancel":          "Cancel",
		"perm_ask":             "Allow access to %s?",
		"perm_record_audio":    "Microphone: for voice commands",
		"perm_camera":          "Camera: to detect obstacles",
		"perm_read_contacts":   "Contacts: to place calls",
		"perm_call_phone":      "Phone: to place calls",
		"perm_send_sms":        "SMS: to send messages",
		"perm_fine_location":   "Location: for navigation",
		"perm_coarse_location": "Approximate location: for navigation",

		// Voice recognition
		"voice_unavailable":        "Speech recognition is not available on this device",
		"voice_no_speech":          "No speech detected",
		"voice_err_audio":          "Audio error",
		"voice_err_client":         "Internal client error",
		"voice_err_permissions":    "Microphone permission missing",
		"voice_err_network":        "Network error",
		"voice_err_network_time":   "Network timeout",
		"voice_err_no_match":       "I did not understand what you said",
		"voice_err_busy":           "Recognizer is busy",
		"voice_err_server":         "Speech server error",
		"voice_err_speech_timeout": "No speech detected",
		"voice_err_unknown":        "Unknown recognition error",

		// Startup window
		"startup_status":      "Starting...",
		"startup_loading":     "Loading speech model...",
		"startup_downloading": "Downloading speech model...",

		// Notifications
		"notify_error": "Error",
		"notify_ready": "VAPAJOMI is ready",

		// Errors
		"error_model_load":      "Could not load the speech model",
		"error_model_download":  "Could not download the speech model",
		"error_hotkey_register": "Could not register hotkey",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// Tf formats the translation for key with args.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{ES, EN}
}

// FromLocale picks the UI language matching a locale tag such as "es-ES".
// Unknown locales fall back to Spanish.
func FromLocale(locale string) Language {
	if len(locale) >= 2 {
		switch Language(locale[:2]) {
		case EN:
			return EN
		case ES:
			return ES
		}
	}
	return ES
}

// Package config provides application settings persisted to a JSON file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Modifier is a hotkey modifier.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key is a hotkey key.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyL      Key = "l"
	KeyV      Key = "v"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// Environment overrides. They win over the file and are never written back.
const (
	EnvLocale   = "VAPAJOMI_LOCALE"
	EnvRedisURL = "VAPAJOMI_REDIS_URL"
	EnvDBPath   = "VAPAJOMI_DB_PATH"
	EnvLogLevel = "VAPAJOMI_LOG_LEVEL"
)

// DefaultLocale is the speech and synthesis locale.
const DefaultLocale = "es-ES"

// HotkeyConfig holds the push-to-talk hotkey.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String renders the hotkey as "ctrl+shift+space".
func (h HotkeyConfig) String() string {
	result := ""
	for _, m := range h.Modifiers {
		result += string(m) + "+"
	}
	return result + string(h.Key)
}

type configData struct {
	Locale        string          `json:"locale"`
	UILanguage    string          `json:"ui_language,omitempty"`
	Notifications bool            `json:"notifications"`
	Hotkey        HotkeyConfig    `json:"hotkey"`
	ModelID       string          `json:"model_id,omitempty"`
	ModelsDir     string          `json:"models_dir,omitempty"`
	RedisURL      string          `json:"redis_url,omitempty"`
	DatabasePath  string          `json:"database_path,omitempty"`
	TTSBinary     string          `json:"tts_binary,omitempty"`
	LogLevel      string          `json:"log_level,omitempty"`
	Permissions   map[string]bool `json:"permissions,omitempty"`
}

type overrides struct {
	locale   string
	redisURL string
	dbPath   string
	logLevel string
}

// Config holds application settings.
type Config struct {
	mu         sync.RWMutex
	data       configData
	env        overrides
	configPath string
	baseDir    string
}

// New loads the configuration from path. An empty path means config.json
// next to the binary. A missing or broken file leaves the defaults.
func New(path string) *Config {
	c := &Config{
		data: configData{
			Locale:        DefaultLocale,
			Notifications: true,
			Hotkey: HotkeyConfig{
				Modifiers: []Modifier{ModCtrl, ModShift},
				Key:       KeySpace,
			},
			LogLevel:    "info",
			Permissions: map[string]bool{},
		},
	}

	if path == "" {
		if execPath, err := os.Executable(); err == nil {
			if execPath, err = filepath.EvalSymlinks(execPath); err == nil {
				path = filepath.Join(filepath.Dir(execPath), "config.json")
			}
		}
	}
	if path != "" {
		c.configPath = path
		c.baseDir = filepath.Dir(path)
	}

	c.load()
	c.env = overrides{
		locale:   os.Getenv(EnvLocale),
		redisURL: os.Getenv(EnvRedisURL),
		dbPath:   os.Getenv(EnvDBPath),
		logLevel: os.Getenv(EnvLogLevel),
	}

	return c
}

func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	raw, err := os.ReadFile(c.configPath)
	if err != nil {
		return
	}

	var data configData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	if data.Locale != "" {
		c.data.Locale = data.Locale
	}
	if data.Hotkey.Key != "" {
		c.data.Hotkey = data.Hotkey
	}
	if data.LogLevel != "" {
		c.data.LogLevel = data.LogLevel
	}
	if data.Permissions != nil {
		c.data.Permissions = data.Permissions
	}
	c.data.UILanguage = data.UILanguage
	c.data.Notifications = data.Notifications
	c.data.ModelID = data.ModelID
	c.data.ModelsDir = data.ModelsDir
	c.data.RedisURL = data.RedisURL
	c.data.DatabasePath = data.DatabasePath
	c.data.TTSBinary = data.TTSBinary
}

// save must be called with c.mu held.
func (c *Config) save() error {
	if c.configPath == "" {
		return nil
	}

	raw, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, raw, 0o644)
}

// Path returns the file the configuration is persisted to.
func (c *Config) Path() string {
	return c.configPath
}

// Locale returns the speech locale, e.g. "es-ES".
func (c *Config) Locale() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.env.locale != "" {
		return c.env.locale
	}
	return c.data.Locale
}

// SetLocale sets the speech locale.
func (c *Config) SetLocale(locale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Locale = locale
	c.save()
}

// UILanguage returns the interface language; empty means "follow locale".
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.UILanguage
}

// NotificationsEnabled returns true if desktop notifications are on.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Notifications
}

// ToggleNotifications flips notifications and returns the new state.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Notifications = !c.data.Notifications
	c.save()
	return c.data.Notifications
}

// Hotkey returns the push-to-talk hotkey.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Hotkey
}

// SetHotkey stores the push-to-talk hotkey.
func (c *Config) SetHotkey(h HotkeyConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.Hotkey = h
	c.save()
}

// ModelID returns the selected speech model.
func (c *Config) ModelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.ModelID
}

// SetModelID stores the selected speech model.
func (c *Config) SetModelID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data.ModelID = id
	c.save()
}

// ModelsDir returns where speech models live.
func (c *Config) ModelsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(c.data.ModelsDir, "models")
}

// RedisURL returns the profile store address; empty means in-memory.
func (c *Config) RedisURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.env.redisURL != "" {
		return c.env.redisURL
	}
	return c.data.RedisURL
}

// DatabasePath returns the auth database file.
func (c *Config) DatabasePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.env.dbPath != "" {
		return c.env.dbPath
	}
	return c.resolve(c.data.DatabasePath, "vapajomi.db")
}

// TTSBinary returns the configured synthesizer binary; empty means autodetect.
func (c *Config) TTSBinary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.TTSBinary
}

// LogLevel returns the log level name.
func (c *Config) LogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.env.logLevel != "" {
		return c.env.logLevel
	}
	return c.data.LogLevel
}

// PermissionGrant reports a stored grant. known is false if the user was never asked.
func (c *Config) PermissionGrant(name string) (granted, known bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	granted, known = c.data.Permissions[name]
	return granted, known
}

// SetPermissionGrant stores the user's answer for a capability.
func (c *Config) SetPermissionGrant(name string, granted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data.Permissions == nil {
		c.data.Permissions = map[string]bool{}
	}
	c.data.Permissions[name] = granted
	c.save()
}

// resolve makes relative paths relative to the config directory.
func (c *Config) resolve(value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) || c.baseDir == "" {
		return value
	}
	return filepath.Join(c.baseDir, value)
}

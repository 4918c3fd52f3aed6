package screen

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"vapajomi/internal/i18n"
	"vapajomi/internal/permission"
	"vapajomi/internal/profile"
	"vapajomi/internal/tts"
	"vapajomi/internal/ui"
	"vapajomi/internal/voice"
)

var errSignedOut = errors.New("no signed-in user")

// Home greets the user and captures voice commands.
type Home struct {
	flow    *Flow
	view    HomeView
	scope   *ui.Scope
	capture *voice.Capture
	synth   tts.Synthesizer

	// Speech requested before the synthesizer is ready; flushes keep only the last.
	ttsReady  bool
	pending   []string
	loggedOut bool
	disposed  bool
}

func (h *Home) Start() {
	deps := h.flow.deps
	h.scope = ui.NewScope(deps.Dispatcher)

	if deps.NewSynthesizer != nil {
		h.synth = deps.NewSynthesizer(func(ok bool) {
			if !h.scope.Closed() {
				h.onSynthInit(ok)
			}
		})
	}
	h.capture = voice.New(deps.Speech, deps.Locale, h.onVoiceResult, h.onVoiceError)

	h.loadName()
	h.checkPermissions()
}

func (h *Home) locale() string {
	if h.flow.deps.Locale == "" {
		return voice.DefaultLocale
	}
	return h.flow.deps.Locale
}

func (h *Home) onSynthInit(ok bool) {
	if !ok {
		log.Warn("speech synthesis unavailable")
		h.pending = nil
		return
	}
	if status := h.synth.SetLanguage(h.locale()); !status.Usable() {
		log.Warn("synthesis language unsupported", "locale", h.locale(), "status", status)
		h.flow.notify(i18n.T("home_tts_unsupported"))
		h.pending = nil
		return
	}

	h.ttsReady = true
	for _, text := range h.pending {
		h.synth.Speak(text, tts.QueueAdd)
	}
	h.pending = nil
}

// speak interrupts whatever is being said.
func (h *Home) speak(text string) {
	if h.synth == nil {
		return
	}
	if !h.ttsReady {
		h.pending = []string{text}
		return
	}
	h.synth.Speak(text, tts.QueueFlush)
}

func (h *Home) loadName() {
	deps := h.flow.deps
	ui.Go(h.scope, func(ctx context.Context) (profile.Profile, error) {
		id, ok := deps.Auth.CurrentUser(ctx)
		if !ok {
			return profile.Profile{}, errSignedOut
		}
		return deps.Profiles.Get(ctx, id)
	}, func(r ui.Result[profile.Profile]) {
		if errors.Is(r.Err, errSignedOut) {
			log.Warn("home shown without a session")
			return
		}
		if r.Err != nil {
			log.Warn("profile read failed", "err", r.Err)
		}
		if r.OK() && r.Value.Name != "" {
			h.view.SetGreeting(i18n.Tf("home_welcome_name", r.Value.Name))
			h.speak(i18n.Tf("home_welcome_spoken", r.Value.Name))
			return
		}
		h.view.SetGreeting(i18n.T("home_welcome"))
		h.speak(i18n.T("home_welcome"))
	})
}

func (h *Home) checkPermissions() {
	missing := permission.Missing(h.flow.deps.Permissions, permission.Required())
	if len(missing) == 0 {
		h.speak(i18n.T("home_permissions_all"))
		return
	}

	h.view.ShowRationale(missing,
		func() { h.scope.Post(func() { h.request(missing) }) },
		func() { h.scope.Post(func() { h.speak(i18n.T("home_permissions_needed")) }) },
	)
}

func (h *Home) request(caps []permission.Capability) {
	h.flow.deps.Permissions.Request(PermissionsRequestCode, caps, func(code int, caps []permission.Capability, results []bool) {
		if !h.scope.Closed() {
			h.onPermissionResult(code, results)
		}
	})
}

func (h *Home) onPermissionResult(code int, results []bool) {
	if code != PermissionsRequestCode {
		return
	}
	if permission.AllGranted(results) {
		h.speak(i18n.T("home_permissions_granted"))
	} else {
		h.speak(i18n.T("home_permissions_denied"))
	}
}

// Listen starts a voice command, or asks for the microphone first.
func (h *Home) Listen() {
	if h.disposed || h.loggedOut {
		return
	}
	if !h.flow.deps.Permissions.Granted(permission.RecordAudio) {
		h.request([]permission.Capability{permission.RecordAudio})
		return
	}
	if !h.capture.Ready() {
		h.view.SetVoiceResult(i18n.T("voice_unavailable"))
		return
	}

	h.view.SetVoiceResult(i18n.T("home_listening"))
	h.view.SetListening(true)
	h.capture.StartListening()
}

// StopListening ends the current voice command early.
func (h *Home) StopListening() {
	if h.capture != nil {
		h.capture.StopListening()
	}
}

func (h *Home) onVoiceResult(text string) {
	if h.loggedOut || h.disposed {
		return
	}
	h.view.SetListening(false)
	heard := i18n.Tf("home_heard", text)
	h.view.SetVoiceResult(heard)
	h.speak(heard)
}

func (h *Home) onVoiceError(message string) {
	if h.loggedOut || h.disposed {
		return
	}
	h.view.SetListening(false)
	h.view.SetVoiceResult(message)
	h.flow.notify(message)
}

// Logout says goodbye, then signs out and returns to login.
func (h *Home) Logout() {
	if h.loggedOut || h.disposed {
		return
	}
	h.loggedOut = true
	// Drop the attempt so a late transcription cannot talk over the farewell.
	h.capture.Destroy()
	h.view.SetListening(false)
	h.speak(i18n.T("home_logging_out"))

	h.scope.After(h.flow.deps.LogoutDelay, func() {
		ui.Go(h.scope, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.flow.deps.Auth.SignOut(ctx)
		}, func(r ui.Result[struct{}]) {
			if !r.OK() {
				log.Error("sign out failed", "err", r.Err)
			}
			h.flow.nav.Replace(h.flow.NewLogin(), true)
		})
	})
}

// View returns the view the screen draws on.
func (h *Home) View() HomeView {
	return h.view
}

// Dispose releases the recognizer and the synthesizer.
func (h *Home) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true

	if h.capture != nil {
		h.capture.Destroy()
	}
	if h.synth != nil {
		h.synth.Stop()
		h.synth.Shutdown()
	}
	if h.scope != nil {
		h.scope.Close()
	}
}

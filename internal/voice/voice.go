// Package voice wraps a speech recognizer behind two plain callbacks.
package voice

import (
	"strings"

	"github.com/charmbracelet/log"

	"vapajomi/internal/i18n"
	"vapajomi/internal/speech"
)

// DefaultLocale is used when New receives an empty locale.
const DefaultLocale = "es-ES"

var errorKeys = map[speech.ErrorCode]string{
	speech.ErrorAudio:                   "voice_err_audio",
	speech.ErrorClient:                  "voice_err_client",
	speech.ErrorInsufficientPermissions: "voice_err_permissions",
	speech.ErrorNetwork:                 "voice_err_network",
	speech.ErrorNetworkTimeout:          "voice_err_network_time",
	speech.ErrorNoMatch:                 "voice_err_no_match",
	speech.ErrorRecognizerBusy:          "voice_err_busy",
	speech.ErrorServer:                  "voice_err_server",
	speech.ErrorSpeechTimeout:           "voice_err_speech_timeout",
}

// MapError returns the message for a recognizer error code. Unknown codes
// get the generic message.
func MapError(code speech.ErrorCode) string {
	if key, ok := errorKeys[code]; ok {
		return i18n.T(key)
	}
	return i18n.T("voice_err_unknown")
}

// Capture owns one recognizer for the lifetime of a screen. It is not safe
// for concurrent use; the recognizer calls back on the UI loop.
type Capture struct {
	speech.BaseListener

	locale     string
	recognizer speech.Recognizer
	onResult   func(text string)
	onError    func(message string)
}

// New creates a capture. When recognition is unavailable onError is called
// right away and the returned capture ignores every call.
func New(host speech.Service, locale string, onResult func(string), onError func(string)) *Capture {
	if locale == "" {
		locale = DefaultLocale
	}
	c := &Capture{locale: locale, onResult: onResult, onError: onError}

	if host == nil || !host.Available() {
		c.fail(i18n.T("voice_unavailable"))
		return c
	}

	rec, err := host.NewRecognizer()
	if err != nil {
		log.Warn("recognizer unavailable", "err", err)
		c.fail(i18n.T("voice_unavailable"))
		return c
	}
	rec.SetListener(c)
	c.recognizer = rec
	return c
}

// Locale is the recognition locale.
func (c *Capture) Locale() string {
	return c.locale
}

// Ready reports whether the capture holds a recognizer.
func (c *Capture) Ready() bool {
	return c.recognizer != nil
}

// StartListening begins a single-hypothesis free-form attempt.
func (c *Capture) StartListening() {
	if c.recognizer == nil {
		return
	}
	c.recognizer.StartListening(speech.Request{
		Locale:             c.locale,
		LanguageModel:      speech.FreeForm,
		LanguagePreference: c.locale,
		PartialResults:     false,
		MaxResults:         1,
	})
}

// StopListening ends an attempt early. Safe when idle.
func (c *Capture) StopListening() {
	if c.recognizer == nil {
		return
	}
	c.recognizer.StopListening()
}

// Destroy releases the recognizer. Calling it again does nothing.
func (c *Capture) Destroy() {
	if c.recognizer == nil {
		return
	}
	rec := c.recognizer
	c.recognizer = nil

	rec.StopListening()
	rec.Cancel()
	rec.Destroy()
}

// OnResults implements speech.Listener.
func (c *Capture) OnResults(hypotheses []string) {
	var text string
	if len(hypotheses) > 0 {
		text = strings.TrimSpace(hypotheses[0])
	}
	if text == "" {
		c.fail(i18n.T("voice_no_speech"))
		return
	}
	if c.onResult != nil {
		c.onResult(text)
	}
}

// OnError implements speech.Listener.
func (c *Capture) OnError(code speech.ErrorCode) {
	log.Debug("recognition error", "code", int(code))
	c.fail(MapError(code))
}

func (c *Capture) fail(message string) {
	if c.onError != nil {
		c.onError(message)
	}
}

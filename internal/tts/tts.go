// Package tts speaks text aloud.
package tts

import (
	"os/exec"

	"vapajomi/internal/ui"
)

// QueueMode decides what happens to pending utterances.
type QueueMode int

const (
	// QueueFlush drops pending and current utterances first.
	QueueFlush QueueMode = iota
	// QueueAdd appends.
	QueueAdd
)

// LanguageStatus is the outcome of SetLanguage.
type LanguageStatus int

const (
	LanguageOK LanguageStatus = iota
	LanguageMissingData
	LanguageNotSupported
)

// Usable reports whether speech will work in the selected language.
func (s LanguageStatus) Usable() bool {
	return s == LanguageOK
}

// Synthesizer is a text-to-speech engine. Methods never block on audio.
type Synthesizer interface {
	SetLanguage(locale string) LanguageStatus
	Speak(text string, mode QueueMode)
	Stop()
	Shutdown()
}

// LookupBinary finds an espeak executable, trying preferred first.
func LookupBinary(preferred string) (string, bool) {
	for _, name := range []string{preferred, "espeak-ng", "espeak"} {
		if name == "" {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// New returns an espeak synthesizer when a binary is found, else Nop.
// onInit is posted to d once initialization finishes.
func New(preferred string, d ui.Dispatcher, onInit func(ok bool)) Synthesizer {
	if path, ok := LookupBinary(preferred); ok {
		return NewEspeak(path, d, onInit)
	}
	return NewNop(d, onInit)
}

// Nop discards everything. Its initialization always fails.
type Nop struct{}

// NewNop reports a failed init through d.
func NewNop(d ui.Dispatcher, onInit func(ok bool)) *Nop {
	if onInit != nil {
		d.Post(func() { onInit(false) })
	}
	return &Nop{}
}

func (*Nop) SetLanguage(string) LanguageStatus { return LanguageNotSupported }
func (*Nop) Speak(string, QueueMode)           {}
func (*Nop) Stop()                             {}
func (*Nop) Shutdown()                         {}

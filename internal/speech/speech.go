// Package speech provides speech recognition: the recognizer handle and
// listener vocabulary the UI consumes, and an offline implementation of it.
package speech

// ErrorCode is the numeric failure reported in a terminal OnError event.
type ErrorCode int

const (
	ErrorNetworkTimeout          ErrorCode = 1
	ErrorNetwork                 ErrorCode = 2
	ErrorAudio                   ErrorCode = 3
	ErrorServer                  ErrorCode = 4
	ErrorClient                  ErrorCode = 5
	ErrorSpeechTimeout           ErrorCode = 6
	ErrorNoMatch                 ErrorCode = 7
	ErrorRecognizerBusy          ErrorCode = 8
	ErrorInsufficientPermissions ErrorCode = 9
)

// LanguageModel selects the recognition grammar.
type LanguageModel string

// FreeForm is unconstrained dictation.
const FreeForm LanguageModel = "free_form"

// Request configures one recognition attempt.
type Request struct {
	Locale             string
	LanguageModel      LanguageModel
	LanguagePreference string
	PartialResults     bool
	MaxResults         int
}

// Listener receives recognition events. Every attempt ends with exactly
// one of OnResults or OnError unless it is cancelled.
type Listener interface {
	OnReadyForSpeech()
	OnBeginningOfSpeech()
	OnRmsChanged(db float32)
	OnEndOfSpeech()
	OnResults(hypotheses []string)
	OnError(code ErrorCode)
}

// BaseListener implements Listener with no-ops for embedding.
type BaseListener struct{}

func (BaseListener) OnReadyForSpeech()      {}
func (BaseListener) OnBeginningOfSpeech()   {}
func (BaseListener) OnRmsChanged(float32)   {}
func (BaseListener) OnEndOfSpeech()         {}
func (BaseListener) OnResults([]string)     {}
func (BaseListener) OnError(code ErrorCode) {}

// Recognizer is a handle on one recognition binding.
type Recognizer interface {
	SetListener(l Listener)
	StartListening(req Request)
	// StopListening ends capture early and recognizes what was heard.
	StopListening()
	// Cancel drops the attempt; no terminal event follows.
	Cancel()
	// Destroy releases the handle. It cannot be used afterwards.
	Destroy()
}

// Service hands out recognizers.
type Service interface {
	Available() bool
	NewRecognizer() (Recognizer, error)
}

// Engine decodes captured 16 kHz mono audio.
type Engine interface {
	// Transcribe returns up to maxResults hypotheses, best first.
	// lang is a primary language subtag such as "es".
	Transcribe(samples []float32, lang string, maxResults int) ([]string, error)
	Close()
	Name() string
}

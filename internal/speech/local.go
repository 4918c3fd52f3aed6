package speech

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"vapajomi/internal/audio"
	"vapajomi/internal/models"
	"vapajomi/internal/permission"
	"vapajomi/internal/ui"
)

var errNoDevice = errors.New("no audio input device")

// Source is the microphone.
type Source interface {
	Start() error
	Stop() []float32
	Samples() []float32
	IsRecording() bool
}

// deviceProber is implemented by sources that can tell whether a device exists.
type deviceProber interface {
	HasInputDevice() bool
}

// EngineProvider yields the currently loaded engine, nil when none.
type EngineProvider interface {
	Current() Engine
}

// Permissions answers whether a capability is granted.
type Permissions interface {
	Granted(c permission.Capability) bool
}

// LocalConfig tunes endpointing.
type LocalConfig struct {
	NoSpeechTimeout time.Duration // silence before any speech ends the attempt
	EndSilence      time.Duration // silence after speech that ends the utterance
	MaxUtterance    time.Duration
	PollInterval    time.Duration
	SpeechThreshold float32 // RMS at or above which a window counts as speech
}

// DefaultLocalConfig returns the production endpointing settings.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		NoSpeechTimeout: 5 * time.Second,
		EndSilence:      1200 * time.Millisecond,
		MaxUtterance:    10 * time.Second,
		PollInterval:    50 * time.Millisecond,
		SpeechThreshold: 0.02,
	}
}

// Local is an offline Service over one microphone and one engine. Only one
// recognizer may hold the microphone at a time.
type Local struct {
	source  Source
	engines EngineProvider
	perms   Permissions
	d       ui.Dispatcher
	cfg     LocalConfig

	mu     sync.Mutex
	holder *localRecognizer
}

// NewLocal creates the service. Listener callbacks are posted to d.
func NewLocal(source Source, engines EngineProvider, perms Permissions, d ui.Dispatcher, cfg LocalConfig) *Local {
	return &Local{source: source, engines: engines, perms: perms, d: d, cfg: cfg}
}

// Available reports whether a microphone exists. The engine may still be
// loading; attempts made before it is ready fail with ErrorServer.
func (s *Local) Available() bool {
	if p, ok := s.source.(deviceProber); ok && !p.HasInputDevice() {
		return false
	}
	return true
}

// NewRecognizer returns a fresh handle.
func (s *Local) NewRecognizer() (Recognizer, error) {
	if !s.Available() {
		return nil, errNoDevice
	}
	return &localRecognizer{svc: s}, nil
}

func (s *Local) acquire(r *localRecognizer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder != nil && s.holder != r {
		return false
	}
	s.holder = r
	return true
}

func (s *Local) release(r *localRecognizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holder == r {
		s.holder = nil
	}
}

type localRecognizer struct {
	svc *Local

	mu        sync.Mutex
	listener  Listener
	session   uint64
	active    bool
	stop      chan struct{}
	destroyed bool
}

func (r *localRecognizer) SetListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.destroyed {
		r.listener = l
	}
}

func (r *localRecognizer) StartListening(req Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return
	}
	if r.active {
		r.rejectLocked(ErrorRecognizerBusy)
		return
	}
	if !r.svc.perms.Granted(permission.RecordAudio) {
		r.rejectLocked(ErrorInsufficientPermissions)
		return
	}
	// A cancelled session may still be tearing the microphone down.
	if r.svc.source.IsRecording() || !r.svc.acquire(r) {
		r.rejectLocked(ErrorRecognizerBusy)
		return
	}

	engine := r.svc.engines.Current()
	if engine == nil {
		r.svc.release(r)
		r.rejectLocked(ErrorServer)
		return
	}
	if err := r.svc.source.Start(); err != nil {
		log.Error("microphone start failed", "err", err)
		r.svc.release(r)
		r.rejectLocked(ErrorAudio)
		return
	}

	r.session++
	r.active = true
	r.stop = make(chan struct{})
	session := r.session

	r.postEvent(session, Listener.OnReadyForSpeech)
	go r.monitor(session, req, engine, r.stop)
}

func (r *localRecognizer) StopListening() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeStopLocked()
}

func (r *localRecognizer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

func (r *localRecognizer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
	r.destroyed = true
	r.listener = nil
}

func (r *localRecognizer) cancelLocked() {
	if !r.active {
		return
	}
	// Bumping the session invalidates everything the monitor still posts.
	r.session++
	r.active = false
	r.closeStopLocked()
}

func (r *localRecognizer) closeStopLocked() {
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
}

// rejectLocked reports a failure for a request that never started a session.
func (r *localRecognizer) rejectLocked(code ErrorCode) {
	l := r.listener
	if l == nil {
		return
	}
	r.svc.d.Post(func() { l.OnError(code) })
}

func (r *localRecognizer) current(session uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active && r.session == session
}

// postEvent delivers a non-terminal event if the session is still live.
func (r *localRecognizer) postEvent(session uint64, fn func(Listener)) {
	r.svc.d.Post(func() {
		r.mu.Lock()
		l := r.listener
		live := r.active && r.session == session
		r.mu.Unlock()
		if live && l != nil {
			fn(l)
		}
	})
}

// finish delivers the terminal event and closes the session.
func (r *localRecognizer) finish(session uint64, fn func(Listener)) {
	r.svc.d.Post(func() {
		r.mu.Lock()
		if !r.active || r.session != session {
			r.mu.Unlock()
			return
		}
		r.active = false
		r.stop = nil
		l := r.listener
		r.mu.Unlock()
		if l != nil {
			fn(l)
		}
	})
}

func (r *localRecognizer) monitor(session uint64, req Request, engine Engine, stop <-chan struct{}) {
	cfg := r.svc.cfg
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	started := time.Now()
	var heard bool
	var speechAt, lastVoice time.Time

	for ended := false; !ended; {
		select {
		case <-stop:
			ended = true
		case now := <-ticker.C:
			rms := audio.RMS(audio.Tail(r.svc.source.Samples(), audio.LevelWindow))
			r.postEvent(session, func(l Listener) { l.OnRmsChanged(audio.DecibelLevel(rms)) })

			if rms >= cfg.SpeechThreshold {
				if !heard {
					heard = true
					speechAt = now
					r.postEvent(session, Listener.OnBeginningOfSpeech)
				}
				lastVoice = now
			}

			switch {
			case !heard && now.Sub(started) >= cfg.NoSpeechTimeout:
				r.svc.source.Stop()
				r.svc.release(r)
				r.finish(session, func(l Listener) { l.OnError(ErrorSpeechTimeout) })
				return
			case heard && now.Sub(lastVoice) >= cfg.EndSilence,
				heard && now.Sub(speechAt) >= cfg.MaxUtterance:
				ended = true
			}
		}
	}

	samples := r.svc.source.Stop()
	r.svc.release(r)
	if !r.current(session) {
		return
	}
	r.postEvent(session, Listener.OnEndOfSpeech)

	hypotheses, err := engine.Transcribe(samples, models.Language(req.Locale), req.MaxResults)
	switch {
	case err != nil:
		log.Error("transcription failed", "engine", engine.Name(), "err", err)
		r.finish(session, func(l Listener) { l.OnError(ErrorClient) })
	case len(hypotheses) == 0:
		r.finish(session, func(l Listener) { l.OnError(ErrorNoMatch) })
	default:
		log.Debug("transcribed", "engine", engine.Name(), "text", hypotheses[0])
		r.finish(session, func(l Listener) { l.OnResults(hypotheses) })
	}
}

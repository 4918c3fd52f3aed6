package speech

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/models"
	"vapajomi/internal/permission"
	"vapajomi/internal/ui"
)

// fakeSource plays back one level per Samples call, repeating the last.
type fakeSource struct {
	mu        sync.Mutex
	levels    []float32
	recording bool
	startErr  error
	noDevice  bool
	starts    int
}

func (s *fakeSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.recording = true
	s.starts++
	return nil
}

func (s *fakeSource) Stop() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = false
	return make([]float32, 100)
}

func (s *fakeSource) Samples() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	level := float32(0)
	if len(s.levels) > 0 {
		level = s.levels[0]
		if len(s.levels) > 1 {
			s.levels = s.levels[1:]
		}
	}
	out := make([]float32, 256)
	for i := range out {
		out[i] = level
	}
	return out
}

func (s *fakeSource) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

func (s *fakeSource) HasInputDevice() bool { return !s.noDevice }

type fakeEngine struct {
	mu     sync.Mutex
	result []string
	err    error
	calls  int
	closed bool
}

func (e *fakeEngine) Transcribe(samples []float32, lang string, maxResults int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return e.result, e.err
}

func (e *fakeEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type engineSlot struct{ engine Engine }

func (s engineSlot) Current() Engine { return s.engine }

type grants map[permission.Capability]bool

func (g grants) Granted(c permission.Capability) bool { return g[c] }

// recorder collects listener events in delivery order.
type recorder struct {
	BaseListener
	events  []string
	results []string
	codes   []ErrorCode
}

func (r *recorder) OnReadyForSpeech()    { r.events = append(r.events, "ready") }
func (r *recorder) OnBeginningOfSpeech() { r.events = append(r.events, "begin") }
func (r *recorder) OnEndOfSpeech()       { r.events = append(r.events, "end") }
func (r *recorder) OnResults(h []string) {
	r.events = append(r.events, "results")
	r.results = h
}
func (r *recorder) OnError(code ErrorCode) {
	r.events = append(r.events, "error")
	r.codes = append(r.codes, code)
}

func (r *recorder) done() bool {
	for _, e := range r.events {
		if e == "results" || e == "error" {
			return true
		}
	}
	return false
}

func testConfig() LocalConfig {
	return LocalConfig{
		NoSpeechTimeout: 60 * time.Millisecond,
		EndSilence:      30 * time.Millisecond,
		MaxUtterance:    500 * time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		SpeechThreshold: 0.1,
	}
}

type harness struct {
	q      *ui.Queue
	source *fakeSource
	engine *fakeEngine
	svc    *Local
	rec    Recognizer
	events *recorder
}

func newHarness(t *testing.T, source *fakeSource, engine *fakeEngine, perms grants) *harness {
	t.Helper()
	q := ui.NewQueue()
	svc := NewLocal(source, engineSlot{engine}, perms, q, testConfig())
	rec, err := svc.NewRecognizer()
	require.NoError(t, err)
	events := &recorder{}
	rec.SetListener(events)
	return &harness{q: q, source: source, engine: engine, svc: svc, rec: rec, events: events}
}

func allowed() grants { return grants{permission.RecordAudio: true} }

func (h *harness) run(t *testing.T) {
	t.Helper()
	require.True(t, h.q.RunUntil(h.events.done, 2*time.Second), "no terminal event")
	// Give stray deliveries a chance to show up.
	h.q.RunUntil(func() bool { return false }, 20*time.Millisecond)
}

func countTerminal(events []string) int {
	n := 0
	for _, e := range events {
		if e == "results" || e == "error" {
			n++
		}
	}
	return n
}

func TestLocalRecognizesSpeech(t *testing.T) {
	source := &fakeSource{levels: []float32{0, 0.5, 0.5, 0.5, 0}}
	engine := &fakeEngine{result: []string{"hola mundo"}}
	h := newHarness(t, source, engine, allowed())

	h.rec.StartListening(Request{Locale: "es-ES", LanguageModel: FreeForm, MaxResults: 1})
	h.run(t)

	assert.Equal(t, []string{"hola mundo"}, h.events.results)
	assert.Equal(t, "ready", h.events.events[0])
	assert.Contains(t, h.events.events, "begin")
	assert.Contains(t, h.events.events, "end")
	assert.Equal(t, 1, countTerminal(h.events.events))
	assert.False(t, source.IsRecording())
}

func TestLocalSpeechTimeout(t *testing.T) {
	engine := &fakeEngine{result: []string{"never"}}
	h := newHarness(t, &fakeSource{}, engine, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.run(t)

	assert.Equal(t, []ErrorCode{ErrorSpeechTimeout}, h.events.codes)
	assert.Equal(t, 0, engine.Calls())
	assert.Equal(t, 1, countTerminal(h.events.events))
}

func TestLocalNoMatch(t *testing.T) {
	h := newHarness(t, &fakeSource{levels: []float32{0.5, 0}}, &fakeEngine{}, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.run(t)

	assert.Equal(t, []ErrorCode{ErrorNoMatch}, h.events.codes)
}

func TestLocalEngineFailure(t *testing.T) {
	h := newHarness(t, &fakeSource{levels: []float32{0.5, 0}}, &fakeEngine{err: errors.New("decoder")}, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.run(t)

	assert.Equal(t, []ErrorCode{ErrorClient}, h.events.codes)
}

func TestLocalPermissionDenied(t *testing.T) {
	source := &fakeSource{}
	h := newHarness(t, source, &fakeEngine{}, grants{})

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.run(t)

	assert.Equal(t, []ErrorCode{ErrorInsufficientPermissions}, h.events.codes)
	assert.Equal(t, 0, source.starts)
}

func TestLocalAudioFailure(t *testing.T) {
	h := newHarness(t, &fakeSource{startErr: errors.New("no device")}, &fakeEngine{}, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.run(t)

	assert.Equal(t, []ErrorCode{ErrorAudio}, h.events.codes)
}

func TestLocalEngineUnloaded(t *testing.T) {
	q := ui.NewQueue()
	slot := &swappableSlot{engine: &fakeEngine{}}
	svc := NewLocal(&fakeSource{}, slot, allowed(), q, testConfig())
	rec, err := svc.NewRecognizer()
	require.NoError(t, err)
	events := &recorder{}
	rec.SetListener(events)

	slot.set(nil)
	rec.StartListening(Request{})
	require.True(t, q.RunUntil(events.done, time.Second))
	assert.Equal(t, []ErrorCode{ErrorServer}, events.codes)
}

type swappableSlot struct {
	mu     sync.Mutex
	engine Engine
}

func (s *swappableSlot) Current() Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

func (s *swappableSlot) set(e Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
}

func TestLocalBusy(t *testing.T) {
	// Constant speech keeps the first session open until MaxUtterance.
	h := newHarness(t, &fakeSource{levels: []float32{0.5}}, &fakeEngine{result: []string{"uno"}}, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.rec.StartListening(Request{Locale: "es-ES"})

	require.True(t, h.q.RunUntil(func() bool { return len(h.events.codes) > 0 }, time.Second))
	assert.Equal(t, []ErrorCode{ErrorRecognizerBusy}, h.events.codes)

	require.True(t, h.q.RunUntil(func() bool { return len(h.events.results) > 0 }, 2*time.Second))
	assert.Equal(t, []string{"uno"}, h.events.results)
}

func TestLocalSecondRecognizerBusy(t *testing.T) {
	h := newHarness(t, &fakeSource{levels: []float32{0.5}}, &fakeEngine{result: []string{"uno"}}, allowed())
	other, err := h.svc.NewRecognizer()
	require.NoError(t, err)
	otherEvents := &recorder{}
	other.SetListener(otherEvents)

	h.rec.StartListening(Request{})
	other.StartListening(Request{})

	require.True(t, h.q.RunUntil(otherEvents.done, time.Second))
	assert.Equal(t, []ErrorCode{ErrorRecognizerBusy}, otherEvents.codes)
	h.rec.Cancel()
}

func TestLocalStopListeningTranscribesEarly(t *testing.T) {
	engine := &fakeEngine{result: []string{"corto"}}
	h := newHarness(t, &fakeSource{}, engine, allowed())

	h.rec.StartListening(Request{Locale: "es-ES"})
	h.rec.StopListening()
	h.run(t)

	assert.Equal(t, []string{"corto"}, h.events.results)
	assert.Equal(t, 1, engine.Calls())
}

func TestLocalCancelSuppressesTerminal(t *testing.T) {
	engine := &fakeEngine{result: []string{"x"}}
	source := &fakeSource{levels: []float32{0.5}}
	h := newHarness(t, source, engine, allowed())

	h.rec.StartListening(Request{})
	h.rec.Cancel()

	assert.False(t, h.q.RunUntil(h.events.done, 100*time.Millisecond))
	assert.Equal(t, 0, engine.Calls())
	assert.Eventually(t, func() bool { return !source.IsRecording() }, time.Second, 5*time.Millisecond)
}

func TestLocalDestroyIsFinal(t *testing.T) {
	source := &fakeSource{levels: []float32{0.5}}
	h := newHarness(t, source, &fakeEngine{result: []string{"x"}}, allowed())

	h.rec.Destroy()
	h.rec.Destroy()
	h.rec.StartListening(Request{})

	assert.False(t, h.q.RunUntil(h.events.done, 50*time.Millisecond))
	assert.Equal(t, 0, source.starts)
}

func TestLocalAvailable(t *testing.T) {
	q := ui.NewQueue()
	assert.True(t, NewLocal(&fakeSource{}, engineSlot{&fakeEngine{}}, allowed(), q, testConfig()).Available())
	assert.False(t, NewLocal(&fakeSource{noDevice: true}, engineSlot{&fakeEngine{}}, allowed(), q, testConfig()).Available())

	_, err := NewLocal(&fakeSource{noDevice: true}, engineSlot{&fakeEngine{}}, allowed(), q, testConfig()).NewRecognizer()
	assert.Error(t, err)
}

func TestLocalRecognizerBeforeEngineLoads(t *testing.T) {
	q := ui.NewQueue()
	slot := &swappableSlot{}
	svc := NewLocal(&fakeSource{levels: []float32{0, 0.5, 0.5, 0}}, slot, allowed(), q, testConfig())

	assert.True(t, svc.Available())
	rec, err := svc.NewRecognizer()
	require.NoError(t, err)
	events := &recorder{}
	rec.SetListener(events)

	rec.StartListening(Request{})
	require.True(t, q.RunUntil(events.done, time.Second))
	assert.Equal(t, []ErrorCode{ErrorServer}, events.codes)

	slot.set(&fakeEngine{result: []string{"hola"}})
	events.events = nil
	rec.StartListening(Request{Locale: "es-ES"})
	require.True(t, q.RunUntil(events.done, 2*time.Second))
	assert.Equal(t, []string{"hola"}, events.results)
}

func TestParseVoskResult(t *testing.T) {
	got, err := parseVoskResult([]byte(`{"text" : "  hola  "}`), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"hola"}, got)

	got, err = parseVoskResult([]byte(`{"text" : ""}`), 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = parseVoskResult([]byte(`{"alternatives":[{"confidence":120.5,"text":"uno"},{"confidence":80,"text":""},{"confidence":60,"text":"dos"},{"confidence":10,"text":"tres"}]}`), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"uno", "dos"}, got)

	_, err = parseVoskResult([]byte(`not json`), 1)
	assert.Error(t, err)
}

func TestToPCM16Clamps(t *testing.T) {
	pcm := toPCM16([]float32{2, -2, 0})
	require.Len(t, pcm, 6)
	assert.Equal(t, []byte{0xff, 0x7f}, pcm[0:2])
	assert.Equal(t, []byte{0x01, 0x80}, pcm[2:4])
	assert.Equal(t, []byte{0, 0}, pcm[4:6])
}

func TestFactoryLoadAndSwap(t *testing.T) {
	dir := t.TempDir()
	manager, err := models.NewManager(dir, nil)
	require.NoError(t, err)

	es, _ := models.Get("vosk-es-small")
	en, _ := models.Get("vosk-en-small")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, es.Dir), 0o755))

	var opened []*fakeEngine
	f := NewFactory(manager, func(path string) (Engine, error) {
		e := &fakeEngine{}
		opened = append(opened, e)
		return e, nil
	})

	assert.False(t, f.IsLoaded())
	assert.Error(t, f.Load("missing"))
	assert.Error(t, f.Load(en.ID), "not downloaded")

	require.NoError(t, f.Load(es.ID))
	assert.True(t, f.IsLoaded())
	assert.Equal(t, es.ID, f.CurrentModelID())

	require.NoError(t, f.Load(es.ID))
	require.Len(t, opened, 2)
	assert.True(t, opened[0].closed)

	f.Close()
	assert.False(t, f.IsLoaded())
	assert.True(t, opened[1].closed)
}

package voice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/i18n"
	"vapajomi/internal/speech"
)

type fakeRecognizer struct {
	listener  speech.Listener
	requests  []speech.Request
	stops     int
	cancels   int
	destroyed int
}

func (r *fakeRecognizer) SetListener(l speech.Listener)     { r.listener = l }
func (r *fakeRecognizer) StartListening(req speech.Request) { r.requests = append(r.requests, req) }
func (r *fakeRecognizer) StopListening()                    { r.stops++ }
func (r *fakeRecognizer) Cancel()                           { r.cancels++ }
func (r *fakeRecognizer) Destroy()                          { r.destroyed++ }

type fakeService struct {
	available bool
	err       error
	rec       *fakeRecognizer
	created   int
}

func (s *fakeService) Available() bool { return s.available }

func (s *fakeService) NewRecognizer() (speech.Recognizer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created++
	s.rec = &fakeRecognizer{}
	return s.rec, nil
}

type sink struct {
	results []string
	errors  []string
}

func (s *sink) capture(host speech.Service, locale string) *Capture {
	return New(host, locale,
		func(text string) { s.results = append(s.results, text) },
		func(msg string) { s.errors = append(s.errors, msg) },
	)
}

func TestMain(m *testing.M) {
	i18n.SetLanguage(i18n.ES)
	m.Run()
}

func TestUnavailableIsInert(t *testing.T) {
	var out sink
	svc := &fakeService{available: false}
	c := out.capture(svc, "es-ES")

	assert.Equal(t, []string{"El reconocimiento de voz no esta disponible en este dispositivo"}, out.errors)
	assert.False(t, c.Ready())
	assert.Equal(t, 0, svc.created)

	c.StartListening()
	c.StopListening()
	c.Destroy()
	assert.Len(t, out.errors, 1)
}

func TestRecognizerCreationFailureIsInert(t *testing.T) {
	var out sink
	c := out.capture(&fakeService{available: true, err: errors.New("boom")}, "")

	assert.False(t, c.Ready())
	assert.Equal(t, []string{i18n.T("voice_unavailable")}, out.errors)
}

func TestDefaultLocale(t *testing.T) {
	var out sink
	c := out.capture(&fakeService{available: true}, "")
	assert.Equal(t, "es-ES", c.Locale())
}

func TestStartListeningRequest(t *testing.T) {
	var out sink
	svc := &fakeService{available: true}
	c := out.capture(svc, "es-MX")
	require.True(t, c.Ready())
	assert.Same(t, c, svc.rec.listener)

	c.StartListening()
	require.Len(t, svc.rec.requests, 1)
	assert.Equal(t, speech.Request{
		Locale:             "es-MX",
		LanguageModel:      speech.FreeForm,
		LanguagePreference: "es-MX",
		PartialResults:     false,
		MaxResults:         1,
	}, svc.rec.requests[0])
}

func TestResultsTrimmed(t *testing.T) {
	var out sink
	svc := &fakeService{available: true}
	c := out.capture(svc, "es-ES")

	c.OnResults([]string{"  abre la puerta \n", "otra"})
	assert.Equal(t, []string{"abre la puerta"}, out.results)
	assert.Empty(t, out.errors)
}

func TestEmptyResultsAreNoSpeech(t *testing.T) {
	for name, hyps := range map[string][]string{
		"nil":   nil,
		"empty": {},
		"blank": {"   "},
	} {
		t.Run(name, func(t *testing.T) {
			var out sink
			c := out.capture(&fakeService{available: true}, "es-ES")
			c.OnResults(hyps)
			assert.Empty(t, out.results)
			assert.Equal(t, []string{"No se detecto voz"}, out.errors)
		})
	}
}

func TestMapErrorTotal(t *testing.T) {
	want := map[speech.ErrorCode]string{
		speech.ErrorAudio:                   "Error de audio",
		speech.ErrorClient:                  "Error interno del cliente",
		speech.ErrorInsufficientPermissions: "Faltan permisos de microfono",
		speech.ErrorNetwork:                 "Error de red",
		speech.ErrorNetworkTimeout:          "Tiempo de espera agotado",
		speech.ErrorNoMatch:                 "No entendi lo que dijiste",
		speech.ErrorRecognizerBusy:          "El reconocedor esta ocupado",
		speech.ErrorServer:                  "Error del servidor de voz",
		speech.ErrorSpeechTimeout:           "No se detecto voz",
	}
	for code, msg := range want {
		assert.Equal(t, msg, MapError(code), "code %d", code)
	}

	for _, code := range []speech.ErrorCode{0, 10, 11, -1, 999} {
		assert.Equal(t, "Error desconocido de reconocimiento", MapError(code), "code %d", code)
	}
}

func TestOnErrorForwardsMappedMessage(t *testing.T) {
	var out sink
	c := out.capture(&fakeService{available: true}, "es-ES")

	c.OnError(speech.ErrorNoMatch)
	c.OnError(speech.ErrorCode(42))
	assert.Equal(t, []string{"No entendi lo que dijiste", "Error desconocido de reconocimiento"}, out.errors)
}

func TestDestroyIdempotent(t *testing.T) {
	var out sink
	svc := &fakeService{available: true}
	c := out.capture(svc, "es-ES")
	rec := svc.rec

	assert.NotPanics(t, c.Destroy)
	assert.False(t, c.Ready())
	assert.NotPanics(t, c.Destroy)
	assert.False(t, c.Ready())

	assert.Equal(t, 1, rec.stops)
	assert.Equal(t, 1, rec.cancels)
	assert.Equal(t, 1, rec.destroyed)

	c.StartListening()
	assert.Empty(t, rec.requests)
}

func TestStopListeningWhenIdle(t *testing.T) {
	var out sink
	svc := &fakeService{available: true}
	c := out.capture(svc, "es-ES")

	assert.NotPanics(t, c.StopListening)
	assert.Equal(t, 1, svc.rec.stops)
	assert.Empty(t, out.errors)
}

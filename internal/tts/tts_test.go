package tts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/ui"
)

const voicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US            (en 2)
 5  es              --/M      Spanish_(Spain)    roa/es
 5  es-419          --/M      Spanish_(Latin_America) roa/es-419
`

// fakeCommander records utterances. Each Run blocks until released or cancelled.
type fakeCommander struct {
	mu        sync.Mutex
	voicesErr error
	spoken    []string
	cancelled []string
	hold      bool
	release   chan struct{}
}

func (f *fakeCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.voicesErr != nil {
		return nil, f.voicesErr
	}
	return []byte(voicesOutput), nil
}

func (f *fakeCommander) Run(ctx context.Context, name string, args ...string) error {
	text := args[len(args)-1]
	if f.hold {
		select {
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled = append(f.cancelled, text)
			f.mu.Unlock()
			return ctx.Err()
		case <-f.release:
		}
	}
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeCommander) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func (f *fakeCommander) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

func start(t *testing.T, cmd *fakeCommander) (*Espeak, *ui.Queue, bool) {
	t.Helper()
	q := ui.NewQueue()
	var ok, done bool
	e := newEspeak("espeak-ng", cmd, q, func(res bool) { ok, done = res, true })
	require.True(t, q.RunUntil(func() bool { return done }, time.Second))
	t.Cleanup(e.Shutdown)
	return e, q, ok
}

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(voicesOutput))
	assert.True(t, voices["es"])
	assert.True(t, voices["en-us"])
	assert.False(t, voices["language"])
	assert.Len(t, voices, 4)
}

func TestSetLanguage(t *testing.T) {
	e, _, ok := start(t, &fakeCommander{})
	require.True(t, ok)

	assert.Equal(t, LanguageOK, e.SetLanguage("es-ES"))
	assert.Equal(t, "es", e.voice)
	assert.Equal(t, LanguageOK, e.SetLanguage("en_US"))
	assert.Equal(t, "en-us", e.voice)
	assert.Equal(t, LanguageNotSupported, e.SetLanguage("qu-PE"))
}

func TestInitFailure(t *testing.T) {
	e, _, ok := start(t, &fakeCommander{voicesErr: errors.New("missing")})
	assert.False(t, ok)
	assert.Equal(t, LanguageMissingData, e.SetLanguage("es-ES"))
}

func TestSpeakInOrder(t *testing.T) {
	cmd := &fakeCommander{}
	e, _, _ := start(t, cmd)
	e.SetLanguage("es-ES")

	e.Speak("uno", QueueAdd)
	e.Speak("dos", QueueAdd)
	e.Speak("   ", QueueAdd)

	assert.Eventually(t, func() bool { return len(cmd.Spoken()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"uno", "dos"}, cmd.Spoken())
}

func TestFlushInterruptsCurrent(t *testing.T) {
	cmd := &fakeCommander{hold: true, release: make(chan struct{})}
	e, _, _ := start(t, cmd)

	e.Speak("largo", QueueAdd)
	e.Speak("pendiente", QueueAdd)
	// Let the worker pick up the first utterance.
	assert.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.cancel != nil
	}, time.Second, 5*time.Millisecond)

	e.Speak("urgente", QueueFlush)
	assert.Eventually(t, func() bool { return len(cmd.Cancelled()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"largo"}, cmd.Cancelled())

	close(cmd.release)
	assert.Eventually(t, func() bool { return len(cmd.Spoken()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"urgente"}, cmd.Spoken())
}

func TestSpeakAfterShutdownIgnored(t *testing.T) {
	cmd := &fakeCommander{}
	e, _, _ := start(t, cmd)

	e.Shutdown()
	e.Shutdown()
	e.Speak("hola", QueueFlush)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, cmd.Spoken())
}

func TestNop(t *testing.T) {
	q := ui.NewQueue()
	var ok, done bool
	n := NewNop(q, func(res bool) { ok, done = res, true })
	require.True(t, q.RunUntil(func() bool { return done }, time.Second))
	assert.False(t, ok)
	assert.Equal(t, LanguageNotSupported, n.SetLanguage("es-ES"))
	assert.False(t, n.SetLanguage("es-ES").Usable())
	n.Speak("x", QueueFlush)
	n.Shutdown()
}

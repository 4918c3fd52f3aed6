package permission

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/ui"
)

type memStore struct {
	mu     sync.Mutex
	grants map[string]bool
}

func (m *memStore) PermissionGrant(name string) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[name]
	return g, ok
}

func (m *memStore) SetPermissionGrant(name string, granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grants == nil {
		m.grants = map[string]bool{}
	}
	m.grants[name] = granted
}

type scriptedAsker struct {
	answers map[Capability]bool
	err     error
	asked   []Capability
	block   chan struct{}
}

func (a *scriptedAsker) AskPermission(c Capability) (bool, error) {
	if a.block != nil {
		<-a.block
	}
	a.asked = append(a.asked, c)
	if a.err != nil {
		return false, a.err
	}
	return a.answers[c], nil
}

func TestRequiredIsACopy(t *testing.T) {
	caps := Required()
	require.Len(t, caps, 7)
	caps[0] = "mutated"
	assert.Equal(t, RecordAudio, Required()[0])
}

func TestAllGranted(t *testing.T) {
	assert.False(t, AllGranted(nil))
	assert.True(t, AllGranted([]bool{true, true}))
	assert.False(t, AllGranted([]bool{true, false}))
}

func TestMissingKeepsOrder(t *testing.T) {
	store := &memStore{}
	store.SetPermissionGrant(string(Camera), true)
	p := NewPrompter(store, &scriptedAsker{}, ui.NewQueue())

	assert.Equal(t, []Capability{RecordAudio, SendSMS}, Missing(p, []Capability{RecordAudio, Camera, SendSMS}))
}

func TestLabelIsLocalized(t *testing.T) {
	assert.NotEqual(t, "perm_record_audio", RecordAudio.Label())
}

func TestPrompterPersistsAnswers(t *testing.T) {
	q := ui.NewQueue()
	store := &memStore{}
	asker := &scriptedAsker{answers: map[Capability]bool{RecordAudio: true, Camera: false}}
	p := NewPrompter(store, asker, q)

	var gotCode int
	var gotResults []bool
	done := false
	p.Request(100, []Capability{RecordAudio, Camera}, func(code int, caps []Capability, results []bool) {
		gotCode, gotResults, done = code, results, true
	})

	require.True(t, q.RunUntil(func() bool { return done }, time.Second))
	assert.Equal(t, 100, gotCode)
	assert.Equal(t, []bool{true, false}, gotResults)
	assert.True(t, p.Granted(RecordAudio))
	assert.False(t, p.Granted(Camera))
}

func TestPrompterDismissedYieldsEmpty(t *testing.T) {
	q := ui.NewQueue()
	p := NewPrompter(&memStore{}, &scriptedAsker{err: errors.New("cancelled")}, q)

	var results []bool
	done := false
	p.Request(1, []Capability{RecordAudio}, func(_ int, _ []Capability, r []bool) {
		results, done = r, true
	})

	require.True(t, q.RunUntil(func() bool { return done }, time.Second))
	assert.Empty(t, results)
	assert.False(t, AllGranted(results))
}

func TestPrompterConcurrentRequestRejected(t *testing.T) {
	q := ui.NewQueue()
	asker := &scriptedAsker{answers: map[Capability]bool{RecordAudio: true}, block: make(chan struct{})}
	p := NewPrompter(&memStore{}, asker, q)

	first, second := false, false
	var secondResults []bool
	p.Request(1, []Capability{RecordAudio}, func(int, []Capability, []bool) { first = true })
	p.Request(2, []Capability{RecordAudio}, func(_ int, _ []Capability, r []bool) {
		second, secondResults = true, r
	})

	require.True(t, q.RunUntil(func() bool { return second }, time.Second))
	assert.Nil(t, secondResults)

	close(asker.block)
	require.True(t, q.RunUntil(func() bool { return first }, time.Second))
}

package screen

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vapajomi/internal/auth"
	"vapajomi/internal/permission"
	"vapajomi/internal/profile"
	"vapajomi/internal/speech"
	"vapajomi/internal/tts"
	"vapajomi/internal/ui"
)

type fakeAuth struct {
	mu        sync.Mutex
	current   string
	accounts  map[string]string // email -> password
	ids       map[string]string // email -> id
	createErr error
	signOuts  int
	calls     int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: map[string]string{}, ids: map[string]string{}}
}

func (a *fakeAuth) add(email, password, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[email] = password
	a.ids[email] = id
}

func (a *fakeAuth) SignIn(ctx context.Context, email, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if pw, ok := a.accounts[email]; !ok || pw != password {
		return "", auth.ErrInvalidCredentials
	}
	a.current = a.ids[email]
	return a.current, nil
}

func (a *fakeAuth) CreateUser(ctx context.Context, email, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.createErr != nil {
		return "", a.createErr
	}
	id := "id-" + email
	a.accounts[email] = password
	a.ids[email] = id
	a.current = id
	return id, nil
}

func (a *fakeAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signOuts++
	a.current = ""
	return nil
}

func (a *fakeAuth) CurrentUser(ctx context.Context) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.current != ""
}

func (a *fakeAuth) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *fakeAuth) SignOuts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signOuts
}

type fakeProfiles struct {
	*profile.Memory
	putErr error
	getErr error
	delay  time.Duration
}

func (p *fakeProfiles) Get(ctx context.Context, id string) (profile.Profile, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.getErr != nil {
		return profile.Profile{}, p.getErr
	}
	return p.Memory.Get(ctx, id)
}

func (p *fakeProfiles) Put(ctx context.Context, pr profile.Profile) error {
	if p.putErr != nil {
		return p.putErr
	}
	return p.Memory.Put(ctx, pr)
}

type fakeRecognizer struct {
	listener  speech.Listener
	requests  []speech.Request
	stops     int
	destroyed bool
}

func (r *fakeRecognizer) SetListener(l speech.Listener)     { r.listener = l }
func (r *fakeRecognizer) StartListening(req speech.Request) { r.requests = append(r.requests, req) }
func (r *fakeRecognizer) StopListening()                    { r.stops++ }
func (r *fakeRecognizer) Cancel()                           {}
func (r *fakeRecognizer) Destroy()                          { r.destroyed = true }

type fakeSpeech struct {
	unavailable bool
	recognizers []*fakeRecognizer
}

func (s *fakeSpeech) Available() bool { return !s.unavailable }

func (s *fakeSpeech) NewRecognizer() (speech.Recognizer, error) {
	r := &fakeRecognizer{}
	s.recognizers = append(s.recognizers, r)
	return r, nil
}

func (s *fakeSpeech) last() *fakeRecognizer {
	return s.recognizers[len(s.recognizers)-1]
}

type permRequest struct {
	code int
	caps []permission.Capability
}

// fakePerms answers requests with answer, delivered through the dispatcher.
type fakePerms struct {
	d        ui.Dispatcher
	granted  map[permission.Capability]bool
	answer   bool
	requests []permRequest
}

func (p *fakePerms) Granted(c permission.Capability) bool { return p.granted[c] }

func (p *fakePerms) Request(code int, caps []permission.Capability, done permission.ResultFunc) {
	p.requests = append(p.requests, permRequest{code, caps})
	results := make([]bool, len(caps))
	for i, c := range caps {
		results[i] = p.answer
		if p.answer {
			p.granted[c] = true
		}
	}
	p.d.Post(func() { done(code, caps, results) })
}

func grantAll(p *fakePerms) {
	for _, c := range permission.Required() {
		p.granted[c] = true
	}
}

type fakeSynth struct {
	status   tts.LanguageStatus
	spoken   []string
	stopped  bool
	shutdown bool
}

func (s *fakeSynth) SetLanguage(string) tts.LanguageStatus { return s.status }
func (s *fakeSynth) Speak(text string, mode tts.QueueMode) {
	if !s.shutdown {
		s.spoken = append(s.spoken, text)
	}
}
func (s *fakeSynth) Stop()     { s.stopped = true }
func (s *fakeSynth) Shutdown() { s.shutdown = true }

func (s *fakeSynth) count(text string) int {
	n := 0
	for _, t := range s.spoken {
		if t == text {
			n++
		}
	}
	return n
}

type fakeNotifier struct{ messages []string }

func (n *fakeNotifier) Show(message string) { n.messages = append(n.messages, message) }

type formView struct {
	errors map[Field]string
	busy   bool
}

func (v *formView) SetFieldError(f Field, msg string) {
	if v.errors == nil {
		v.errors = map[Field]string{}
	}
	v.errors[f] = msg
}
func (v *formView) ClearErrors()      { v.errors = nil }
func (v *formView) SetBusy(busy bool) { v.busy = busy }

type homeView struct {
	greetings []string
	result    string
	listening bool
	rationale [][]permission.Capability
	accept    bool
}

func (v *homeView) SetGreeting(text string)     { v.greetings = append(v.greetings, text) }
func (v *homeView) SetVoiceResult(text string)  { v.result = text }
func (v *homeView) SetListening(listening bool) { v.listening = listening }
func (v *homeView) ShowRationale(caps []permission.Capability, accept, cancel func()) {
	v.rationale = append(v.rationale, caps)
	if v.accept {
		accept()
	} else {
		cancel()
	}
}

type fakeViews struct {
	logins    []*formView
	registers []*formView
	homes     []*homeView
	accept    bool
}

func (v *fakeViews) LoginView() LoginView {
	fv := &formView{}
	v.logins = append(v.logins, fv)
	return fv
}

func (v *fakeViews) RegisterView() RegisterView {
	fv := &formView{}
	v.registers = append(v.registers, fv)
	return fv
}

func (v *fakeViews) HomeView() HomeView {
	hv := &homeView{accept: v.accept}
	v.homes = append(v.homes, hv)
	return hv
}

type env struct {
	q        *ui.Queue
	auth     *fakeAuth
	profiles *fakeProfiles
	speech   *fakeSpeech
	perms    *fakePerms
	synths   []*fakeSynth
	status   tts.LanguageStatus
	initOK   bool
	notifier *fakeNotifier
	views    *fakeViews
	nav      *Navigator
	flow     *Flow
}

func newEnv(t *testing.T) *env {
	t.Helper()
	q := ui.NewQueue()
	e := &env{
		q:        q,
		auth:     newFakeAuth(),
		profiles: &fakeProfiles{Memory: profile.NewMemory()},
		speech:   &fakeSpeech{},
		perms:    &fakePerms{d: q, granted: map[permission.Capability]bool{}, answer: true},
		initOK:   true,
		notifier: &fakeNotifier{},
		views:    &fakeViews{},
	}
	e.nav = NewNavigator(nil)
	e.flow = NewFlow(Deps{
		Dispatcher:  q,
		Auth:        e.auth,
		Profiles:    e.profiles,
		Speech:      e.speech,
		Permissions: e.perms,
		NewSynthesizer: func(onInit func(bool)) tts.Synthesizer {
			s := &fakeSynth{status: e.status}
			e.synths = append(e.synths, s)
			ok := e.initOK
			q.Post(func() { onInit(ok) })
			return s
		},
		Notifier:    e.notifier,
		Locale:      "es-ES",
		LogoutDelay: 10 * time.Millisecond,
	}, e.views, e.nav)
	return e
}

// until drains the UI queue until cond holds.
func (e *env) until(t *testing.T, cond func() bool) {
	t.Helper()
	require.True(t, e.q.RunUntil(cond, 2*time.Second), "condition not reached")
}

// settle drains the UI queue for a short while.
func (e *env) settle() {
	e.q.RunUntil(func() bool { return false }, 30*time.Millisecond)
}

func (e *env) synth() *fakeSynth {
	return e.synths[len(e.synths)-1]
}

func (e *env) home() *homeView {
	return e.views.homes[len(e.views.homes)-1]
}

func isHome(s Screen) bool {
	_, ok := s.(*Home)
	return ok
}

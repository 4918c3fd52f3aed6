package screen

import (
	"time"

	"vapajomi/internal/auth"
	"vapajomi/internal/permission"
	"vapajomi/internal/profile"
	"vapajomi/internal/speech"
	"vapajomi/internal/tts"
	"vapajomi/internal/ui"
)

// PermissionsRequestCode tags the permission requests Home makes.
const PermissionsRequestCode = 100

// DefaultLogoutDelay leaves time for the farewell to be heard.
const DefaultLogoutDelay = 1500 * time.Millisecond

// Notifier shows short transient messages.
type Notifier interface {
	Show(message string)
}

// Views builds a fresh view for each screen instance.
type Views interface {
	LoginView() LoginView
	RegisterView() RegisterView
	HomeView() HomeView
}

// FormView is what the login and registration screens draw on.
type FormView interface {
	SetFieldError(field Field, message string)
	ClearErrors()
	SetBusy(busy bool)
}

// LoginView is the login form.
type LoginView interface {
	FormView
}

// RegisterView is the registration form.
type RegisterView interface {
	FormView
}

// HomeView is the home screen.
type HomeView interface {
	SetGreeting(text string)
	SetVoiceResult(text string)
	SetListening(listening bool)
	// ShowRationale explains why caps are needed. Exactly one of accept or
	// cancel is called, from any goroutine.
	ShowRationale(caps []permission.Capability, accept, cancel func())
}

// Deps are the services the screens use.
type Deps struct {
	Dispatcher  ui.Dispatcher
	Auth        auth.Backend
	Profiles    profile.Store
	Speech      speech.Service
	Permissions permission.Checker
	// NewSynthesizer creates the synthesizer for one Home instance.
	NewSynthesizer func(onInit func(ok bool)) tts.Synthesizer
	Notifier       Notifier
	// Locale drives recognition and synthesis, "es-ES" when empty.
	Locale      string
	LogoutDelay time.Duration
}

// Flow creates screens and routes global actions to the current one.
type Flow struct {
	deps  Deps
	views Views
	nav   *Navigator
}

// NewFlow wires the screens to nav.
func NewFlow(deps Deps, views Views, nav *Navigator) *Flow {
	if deps.LogoutDelay == 0 {
		deps.LogoutDelay = DefaultLogoutDelay
	}
	return &Flow{deps: deps, views: views, nav: nav}
}

// Start shows the login screen.
func (f *Flow) Start() {
	f.nav.Push(f.NewLogin())
}

// Navigator returns the back stack.
func (f *Flow) Navigator() *Navigator {
	return f.nav
}

func (f *Flow) NewLogin() *Login {
	return &Login{flow: f, view: f.views.LoginView()}
}

func (f *Flow) NewRegister() *Register {
	return &Register{flow: f, view: f.views.RegisterView()}
}

func (f *Flow) NewHome() *Home {
	return &Home{flow: f, view: f.views.HomeView()}
}

// Listen starts voice capture when Home is showing.
func (f *Flow) Listen() {
	if h, ok := f.nav.Current().(*Home); ok {
		h.Listen()
	}
}

// StopListening ends voice capture early when Home is showing.
func (f *Flow) StopListening() {
	if h, ok := f.nav.Current().(*Home); ok {
		h.StopListening()
	}
}

// Logout logs out when Home is showing.
func (f *Flow) Logout() {
	if h, ok := f.nav.Current().(*Home); ok {
		h.Logout()
	}
}

// Shutdown disposes every screen.
func (f *Flow) Shutdown() {
	f.nav.Clear()
}

func (f *Flow) notify(message string) {
	if f.deps.Notifier != nil {
		f.deps.Notifier.Show(message)
	}
}

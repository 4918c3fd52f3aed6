// Package gui draws the login, registration and home screens in a Gio
// window. Views are updated from the UI loop; clicks are posted back to it.
package gui

import (
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/charmbracelet/log"

	"vapajomi/internal/dialog"
	"vapajomi/internal/i18n"
	"vapajomi/internal/permission"
	"vapajomi/internal/screen"
	"vapajomi/internal/ui"
)

const (
	windowWidth  = 420
	windowHeight = 560

	refreshRate   = 50 * time.Millisecond
	toastDuration = 3 * time.Second
)

// Options tune the window. Every field is optional.
type Options struct {
	// Level reports the microphone level, 0..1, while listening.
	Level func() float32
	// Rationale asks the user to accept a permission request.
	Rationale func(caps []permission.Capability) bool
	// Fallback also receives every transient message.
	Fallback screen.Notifier
	// OnListening follows the home screen's listening state.
	OnListening func(listening bool)
	// OnClose runs when the user closes the window.
	OnClose func()
}

type page interface {
	update(gtx layout.Context)
	draw(gtx layout.Context, th *material.Theme) layout.Dimensions
}

// Window is the main application window. It implements screen.Views and
// screen.Notifier.
type Window struct {
	d    ui.Dispatcher
	opts Options

	mu      sync.Mutex
	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	current page
	toast   toast
}

// New creates a closed window.
func New(d ui.Dispatcher, opts Options) *Window {
	if opts.Rationale == nil {
		opts.Rationale = dialog.Rationale
	}
	return &Window{d: d, opts: opts}
}

func (w *Window) LoginView() screen.LoginView       { return newLoginPage(w) }
func (w *Window) RegisterView() screen.RegisterView { return newRegisterPage(w) }
func (w *Window) HomeView() screen.HomeView         { return newHomePage(w) }

// SetScreen shows the page of s. It is the navigator's change hook and
// runs on the UI loop.
func (w *Window) SetScreen(s screen.Screen) {
	var p page
	switch s := s.(type) {
	case *screen.Login:
		lp := s.View().(*loginPage)
		lp.presenter = s
		p = lp
	case *screen.Register:
		rp := s.View().(*registerPage)
		rp.presenter = s
		p = rp
	case *screen.Home:
		hp := s.View().(*homePage)
		hp.presenter = s
		p = hp
	}

	w.mu.Lock()
	w.current = p
	w.mu.Unlock()
	w.invalidate()
}

// Show displays a transient message at the bottom of the window.
func (w *Window) Show(message string) {
	w.mu.Lock()
	w.toast = toast{text: message, until: time.Now().Add(toastDuration)}
	w.mu.Unlock()
	w.invalidate()

	if w.opts.Fallback != nil {
		w.opts.Fallback.Show(message)
	}
}

// Open displays the window (non-blocking).
func (w *Window) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.window = new(app.Window)

	go w.runEventLoop(w.window, w.stopCh, w.doneCh)
}

// Close closes the window without running OnClose.
func (w *Window) Close() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
	case <-time.After(time.Second):
	}
}

func (w *Window) post(fn func()) {
	w.d.Post(fn)
}

func (w *Window) invalidate() {
	w.mu.Lock()
	win := w.window
	w.mu.Unlock()
	if win != nil {
		win.Invalidate()
	}
}

func (w *Window) snapshot() (page, toast) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.toast
}

func (w *Window) runEventLoop(win *app.Window, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	title := i18n.T("app_name")
	win.Option(
		app.Title(title),
		app.Size(unit.Dp(windowWidth), unit.Dp(windowHeight)),
		app.MinSize(unit.Dp(360), unit.Dp(480)),
	)
	go centerWindow(title, windowWidth, windowHeight)

	closing := make(chan struct{})
	go func() {
		ticker := time.NewTicker(refreshRate)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				close(closing)
				win.Perform(system.ActionClose)
				return
			case <-ticker.C:
				win.Invalidate()
			}
		}
	}()

	th := material.NewTheme()
	th.Palette.Fg = colorText
	th.Palette.ContrastBg = colorAccent

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			if e.Err != nil {
				log.Error("window closed", "err", e.Err)
			}
			w.closed(closing)
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.frame(gtx, th)
			e.Frame(gtx.Ops)
		}
	}
}

// closed runs OnClose unless Close asked for the window to go away.
func (w *Window) closed(closing chan struct{}) {
	w.mu.Lock()
	w.running = false
	w.window = nil
	w.mu.Unlock()

	select {
	case <-closing:
	default:
		if w.opts.OnClose != nil {
			w.opts.OnClose()
		}
	}
}

func (w *Window) frame(gtx layout.Context, th *material.Theme) {
	paint.FillShape(gtx.Ops, colorBG, clip.Rect{Max: gtx.Constraints.Max}.Op())

	current, t := w.snapshot()
	if current != nil {
		current.update(gtx)
	}

	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			if current == nil {
				return layout.Dimensions{Size: gtx.Constraints.Max}
			}
			return layout.UniformInset(unit.Dp(24)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return current.draw(gtx, th)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !t.visible(time.Now()) {
				return layout.Dimensions{}
			}
			return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Bottom: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return drawToast(gtx, th, t.text)
			})
		}),
	)
}

// toast is a transient message.
type toast struct {
	text  string
	until time.Time
}

func (t toast) visible(now time.Time) bool {
	return t.text != "" && now.Before(t.until)
}

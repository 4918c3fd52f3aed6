package gui

import (
	"sync"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"vapajomi/internal/i18n"
	"vapajomi/internal/permission"
	"vapajomi/internal/screen"
)

// formState backs the form views. Setters run on the UI loop, getters on
// the window goroutine.
type formState struct {
	mu     sync.Mutex
	errors map[screen.Field]string
	busy   bool

	invalidate func()
}

func (f *formState) SetFieldError(field screen.Field, message string) {
	f.mu.Lock()
	if f.errors == nil {
		f.errors = make(map[screen.Field]string)
	}
	f.errors[field] = message
	f.mu.Unlock()
	f.invalidate()
}

func (f *formState) ClearErrors() {
	f.mu.Lock()
	f.errors = nil
	f.mu.Unlock()
	f.invalidate()
}

func (f *formState) SetBusy(busy bool) {
	f.mu.Lock()
	f.busy = busy
	f.mu.Unlock()
	f.invalidate()
}

func (f *formState) fieldError(field screen.Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[field]
}

func (f *formState) isBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

type loginPage struct {
	formState
	w *Window
	// presenter is only touched on the UI loop.
	presenter *screen.Login

	email    widget.Editor
	password widget.Editor
	submit   widget.Clickable
	create   widget.Clickable
}

func newLoginPage(w *Window) *loginPage {
	p := &loginPage{w: w}
	p.invalidate = w.invalidate
	singleLine(&p.email, 0)
	singleLine(&p.password, '•')
	return p
}

func (p *loginPage) update(gtx layout.Context) {
	enter := submitted(gtx, &p.email)
	enter = submitted(gtx, &p.password) || enter

	if (p.submit.Clicked(gtx) || enter) && !p.isBusy() {
		form := screen.LoginForm{Email: p.email.Text(), Password: p.password.Text()}
		p.w.post(func() { p.presenter.Submit(form) })
	}
	if p.create.Clicked(gtx) {
		p.w.post(func() { p.presenter.CreateAccount() })
	}
}

func (p *loginPage) draw(gtx layout.Context, th *material.Theme) layout.Dimensions {
	busy := p.isBusy()
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawTitle(gtx, th, i18n.T("login_title"))
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(24)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawField(gtx, th, i18n.T("login_email"), &p.email, p.fieldError(screen.FieldEmail))
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawField(gtx, th, i18n.T("login_password"), &p.password, p.fieldError(screen.FieldPassword))
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(24)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return drawButton(gtx, th, &p.submit, i18n.T("login_submit"), colorAccent, !busy)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return drawLink(gtx, th, &p.create, i18n.T("login_create_account"))
		}),
	)
}

type registerPage struct {
	formState
	w         *Window
	presenter *screen.Register

	name     widget.Editor
	email    widget.Editor
	password widget.Editor
	confirm  widget.Editor
	submit   widget.Clickable
	back     widget.Clickable
	list     widget.List
}

func newRegisterPage(w *Window) *registerPage {
	p := &registerPage{w: w}
	p.invalidate = w.invalidate
	singleLine(&p.name, 0)
	singleLine(&p.email, 0)
	singleLine(&p.password, '•')
	singleLine(&p.confirm, '•')
	p.list.Axis = layout.Vertical
	return p
}

func (p *registerPage) form() screen.RegisterForm {
	return screen.RegisterForm{
		Name:     p.name.Text(),
		Email:    p.email.Text(),
		Password: p.password.Text(),
		Confirm:  p.confirm.Text(),
	}
}

func (p *registerPage) update(gtx layout.Context) {
	enter := false
	for _, ed := range []*widget.Editor{&p.name, &p.email, &p.password, &p.confirm} {
		enter = submitted(gtx, ed) || enter
	}

	if (p.submit.Clicked(gtx) || enter) && !p.isBusy() {
		form := p.form()
		p.w.post(func() { p.presenter.Submit(form) })
	}
	if p.back.Clicked(gtx) {
		p.w.post(func() { p.presenter.BackToLogin() })
	}
}

func (p *registerPage) draw(gtx layout.Context, th *material.Theme) layout.Dimensions {
	busy := p.isBusy()
	fields := []struct {
		label string
		ed    *widget.Editor
		field screen.Field
	}{
		{i18n.T("register_name"), &p.name, screen.FieldName},
		{i18n.T("login_email"), &p.email, screen.FieldEmail},
		{i18n.T("login_password"), &p.password, screen.FieldPassword},
		{i18n.T("register_confirm"), &p.confirm, screen.FieldConfirm},
	}

	return material.List(th, &p.list).Layout(gtx, 1, func(gtx layout.Context, _ int) layout.Dimensions {
		children := []layout.FlexChild{
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return drawTitle(gtx, th, i18n.T("register_title"))
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(20)}.Layout),
		}
		for _, f := range fields {
			children = append(children,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return drawField(gtx, th, f.label, f.ed, p.fieldError(f.field))
				}),
				layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			)
		}
		children = append(children,
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Constraints.Max.X
				return drawButton(gtx, th, &p.submit, i18n.T("register_submit"), colorAccent, !busy)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Constraints.Max.X
				return drawLink(gtx, th, &p.back, i18n.T("register_back"))
			}),
		)
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
}

type homePage struct {
	w         *Window
	presenter *screen.Home

	mu        sync.Mutex
	greeting  string
	result    string
	listening bool

	listen widget.Clickable
	logout widget.Clickable
}

func newHomePage(w *Window) *homePage {
	return &homePage{w: w}
}

func (p *homePage) SetGreeting(text string) {
	p.mu.Lock()
	p.greeting = text
	p.mu.Unlock()
	p.w.invalidate()
}

func (p *homePage) SetVoiceResult(text string) {
	p.mu.Lock()
	p.result = text
	p.mu.Unlock()
	p.w.invalidate()
}

func (p *homePage) SetListening(listening bool) {
	p.mu.Lock()
	p.listening = listening
	p.mu.Unlock()
	p.w.invalidate()

	if p.w.opts.OnListening != nil {
		p.w.opts.OnListening(listening)
	}
}

// ShowRationale blocks on a modal dialog, so it runs off the UI loop.
func (p *homePage) ShowRationale(caps []permission.Capability, accept, cancel func()) {
	go func() {
		if p.w.opts.Rationale(caps) {
			accept()
		} else {
			cancel()
		}
	}()
}

func (p *homePage) state() (greeting, result string, listening bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.greeting, p.result, p.listening
}

func (p *homePage) update(gtx layout.Context) {
	_, _, listening := p.state()
	if p.listen.Clicked(gtx) {
		if listening {
			p.w.post(func() { p.presenter.StopListening() })
		} else {
			p.w.post(func() { p.presenter.Listen() })
		}
	}
	if p.logout.Clicked(gtx) {
		p.w.post(func() { p.presenter.Logout() })
	}
}

func (p *homePage) draw(gtx layout.Context, th *material.Theme) layout.Dimensions {
	greeting, result, listening := p.state()

	listenLabel, listenColor := i18n.T("home_listen"), colorAccent
	if listening {
		listenLabel, listenColor = i18n.T("home_listening"), colorDanger
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return drawTitle(gtx, th, greeting)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(24)}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return drawText(gtx, th, unit.Sp(16), result, colorText)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !listening || p.w.opts.Level == nil {
				return layout.Dimensions{}
			}
			return layout.Inset{Bottom: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return drawLevelBar(gtx, p.w.opts.Level())
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return drawButton(gtx, th, &p.listen, listenLabel, listenColor, true)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return drawButton(gtx, th, &p.logout, i18n.T("home_logout"), colorPanel, true)
		}),
	)
}

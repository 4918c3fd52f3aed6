package screen

import (
	"context"

	"github.com/charmbracelet/log"

	"vapajomi/internal/auth"
	"vapajomi/internal/i18n"
	"vapajomi/internal/ui"
)

// Login signs existing users in.
type Login struct {
	flow  *Flow
	view  LoginView
	scope *ui.Scope
	busy  bool
}

// Start skips straight to Home when a session exists.
func (l *Login) Start() {
	l.scope = ui.NewScope(l.flow.deps.Dispatcher)

	ui.Go(l.scope, func(ctx context.Context) (string, error) {
		id, _ := l.flow.deps.Auth.CurrentUser(ctx)
		return id, nil
	}, func(r ui.Result[string]) {
		if r.Value != "" {
			log.Info("session restored", "user", r.Value)
			l.flow.nav.Replace(l.flow.NewHome(), true)
		}
	})
}

// Submit validates the form and signs in.
func (l *Login) Submit(form LoginForm) {
	form = form.Normalize()
	l.view.ClearErrors()
	if fe := ValidateLogin(form); fe != nil {
		l.view.SetFieldError(fe.Field, fe.Message)
		return
	}
	if l.busy {
		return
	}
	l.setBusy(true)

	ui.Go(l.scope, func(ctx context.Context) (string, error) {
		return l.flow.deps.Auth.SignIn(ctx, form.Email, form.Password)
	}, func(r ui.Result[string]) {
		l.setBusy(false)
		if !r.OK() {
			log.Warn("sign in failed", "err", r.Err)
			l.flow.notify(i18n.Tf("error_backend", auth.Message(r.Err)))
			return
		}
		l.flow.nav.Replace(l.flow.NewHome(), true)
	})
}

// CreateAccount opens registration on top of login.
func (l *Login) CreateAccount() {
	l.flow.nav.Push(l.flow.NewRegister())
}

// View returns the view the screen draws on.
func (l *Login) View() LoginView {
	return l.view
}

func (l *Login) Dispose() {
	if l.scope != nil {
		l.scope.Close()
	}
}

func (l *Login) setBusy(busy bool) {
	l.busy = busy
	l.view.SetBusy(busy)
}

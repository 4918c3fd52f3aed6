package screen

import (
	"context"

	"github.com/charmbracelet/log"

	"vapajomi/internal/auth"
	"vapajomi/internal/i18n"
	"vapajomi/internal/profile"
	"vapajomi/internal/ui"
)

// Register creates an account and its profile.
type Register struct {
	flow  *Flow
	view  RegisterView
	scope *ui.Scope
	busy  bool
}

func (r *Register) Start() {
	r.scope = ui.NewScope(r.flow.deps.Dispatcher)
}

// Submit validates the form, creates the account, then writes the profile.
func (r *Register) Submit(form RegisterForm) {
	form = form.Normalize()
	r.view.ClearErrors()
	if fe := ValidateRegistration(form); fe != nil {
		r.view.SetFieldError(fe.Field, fe.Message)
		return
	}
	if r.busy {
		return
	}
	r.setBusy(true)

	ui.Go(r.scope, func(ctx context.Context) (string, error) {
		return r.flow.deps.Auth.CreateUser(ctx, form.Email, form.Password)
	}, func(res ui.Result[string]) {
		if !res.OK() {
			r.setBusy(false)
			log.Warn("create user failed", "err", res.Err)
			r.flow.notify(i18n.Tf("error_backend", auth.Message(res.Err)))
			return
		}
		r.saveProfile(profile.Profile{ID: res.Value, Name: form.Name, Email: form.Email})
	})
}

func (r *Register) saveProfile(p profile.Profile) {
	ui.Go(r.scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.flow.deps.Profiles.Put(ctx, p)
	}, func(res ui.Result[struct{}]) {
		r.setBusy(false)
		if !res.OK() {
			log.Error("save profile failed", "user", p.ID, "err", res.Err)
			r.flow.notify(i18n.Tf("register_save_err", res.Err.Error()))
			return
		}
		r.flow.notify(i18n.T("register_success"))
		r.flow.nav.Replace(r.flow.NewHome(), true)
	})
}

// BackToLogin returns to the login screen.
func (r *Register) BackToLogin() {
	r.flow.nav.Back()
}

// View returns the view the screen draws on.
func (r *Register) View() RegisterView {
	return r.view
}

func (r *Register) Dispose() {
	if r.scope != nil {
		r.scope.Close()
	}
}

func (r *Register) setBusy(busy bool) {
	r.busy = busy
	r.view.SetBusy(busy)
}

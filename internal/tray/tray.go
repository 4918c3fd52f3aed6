// Package tray provides the system tray icon and menu.
package tray

import (
	"github.com/getlantern/systray"

	"vapajomi/internal/i18n"
)

// State is what the tray icon shows.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
)

func (s State) label() string {
	switch s {
	case StateListening:
		return i18n.T("tray_listening")
	case StateProcessing:
		return i18n.T("tray_processing")
	default:
		return i18n.T("tray_ready")
	}
}

// Callbacks handle menu clicks. They run on the tray goroutine.
type Callbacks struct {
	OnListen              func()
	OnNotificationsToggle func() bool
	OnHotkeyClick         func()
	OnLogout              func()
	OnQuit                func()
}

// Tray manages the tray icon.
type Tray struct {
	callbacks     Callbacks
	notifications bool

	status    *systray.MenuItem
	listenBtn *systray.MenuItem
	notifyOn  *systray.MenuItem
	hotkeyBtn *systray.MenuItem
	logoutBtn *systray.MenuItem
	quitBtn   *systray.MenuItem
}

// New creates a Tray. notifications is the initial checkbox state.
func New(callbacks Callbacks, notifications bool) *Tray {
	return &Tray{callbacks: callbacks, notifications: notifications}
}

// Run starts the tray and blocks until Quit.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, func() {})
}

func (t *Tray) onReady() {
	systray.SetIcon(icon(StateIdle))
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()

	systray.AddSeparator()

	t.listenBtn = systray.AddMenuItem(i18n.T("tray_listen"), i18n.T("tray_listen_hint"))
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.notifications)
	t.hotkeyBtn = systray.AddMenuItem(i18n.T("tray_hotkey"), i18n.T("tray_hotkey_hint"))
	t.logoutBtn = systray.AddMenuItem(i18n.T("tray_logout"), i18n.T("tray_logout_hint"))

	systray.AddSeparator()

	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.listenBtn.ClickedCh:
			call(t.callbacks.OnListen)

		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle == nil {
				continue
			}
			if t.callbacks.OnNotificationsToggle() {
				t.notifyOn.Check()
			} else {
				t.notifyOn.Uncheck()
			}

		case <-t.hotkeyBtn.ClickedCh:
			call(t.callbacks.OnHotkeyClick)

		case <-t.logoutBtn.ClickedCh:
			call(t.callbacks.OnLogout)

		case <-t.quitBtn.ClickedCh:
			call(t.callbacks.OnQuit)
			systray.Quit()
			return
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetState updates the icon and the status line.
func (t *Tray) SetState(state State) {
	systray.SetIcon(icon(state))
	systray.SetTooltip(i18n.T("app_name") + " - " + state.label())
	if t.status != nil {
		t.status.SetTitle(state.label())
	}
}

// SetSignedIn enables the actions that need a session.
func (t *Tray) SetSignedIn(signedIn bool) {
	for _, item := range []*systray.MenuItem{t.listenBtn, t.logoutBtn} {
		if item == nil {
			continue
		}
		if signedIn {
			item.Enable()
		} else {
			item.Disable()
		}
	}
}

// Quit closes the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

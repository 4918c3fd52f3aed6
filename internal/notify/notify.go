// Package notify shows desktop notifications.
package notify

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/beeep"

	"vapajomi/internal/i18n"
)

const appName = "VAPAJOMI"

// maxBody keeps long recognizer output from flooding the notification area.
const maxBody = 100

// Notifier sends desktop notifications. It doubles as the screens'
// transient message sink.
type Notifier struct {
	enabled atomic.Bool
	send    func(title, message string) error
}

// New creates a Notifier.
func New(enabled bool) *Notifier {
	n := &Notifier{send: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Enabled reports whether notifications are shown.
func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

// Show displays a short message.
func (n *Notifier) Show(message string) {
	n.notify("", message)
}

// Ready announces that the assistant finished starting.
func (n *Notifier) Ready() {
	n.notify("", i18n.T("notify_ready"))
}

// Error displays a failure.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled.Load() {
		return
	}
	if r := []rune(message); len(r) > maxBody {
		message = string(r[:maxBody]) + "..."
	}

	full := appName
	if title != "" {
		full += ": " + title
	}
	// Notification failures are not fatal.
	if err := n.send(full, message); err != nil {
		log.Debug("notification failed", "err", err)
	}
}

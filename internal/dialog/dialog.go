// Package dialog shows native modal dialogs.
package dialog

import (
	"errors"
	"strings"

	"github.com/ncruces/zenity"

	"vapajomi/internal/config"
	"vapajomi/internal/i18n"
	"vapajomi/internal/permission"
)

// ErrCanceled is returned when the user dismisses a dialog.
var ErrCanceled = zenity.ErrCanceled

// ErrNoModifier is returned when the hotkey dialog is confirmed without a modifier.
var ErrNoModifier = errors.New("dialog: at least one modifier is required")

var (
	modOptions = []string{"Ctrl", "Shift", "Alt", "Super (Win/Cmd)"}
	modValues  = []config.Modifier{config.ModCtrl, config.ModShift, config.ModAlt, config.ModSuper}

	keyOptions = []string{
		"Space", "Return", "L", "V",
		"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	}
	keyValues = []config.Key{
		config.KeySpace, config.KeyReturn, config.KeyL, config.KeyV,
		config.KeyF1, config.KeyF2, config.KeyF3, config.KeyF4,
		config.KeyF5, config.KeyF6, config.KeyF7, config.KeyF8,
		config.KeyF9, config.KeyF10, config.KeyF11, config.KeyF12,
	}
)

// SelectHotkey asks for a new push-to-talk hotkey in two steps. Cancelling
// either step returns current with zenity.ErrCanceled.
func SelectHotkey(current config.HotkeyConfig) (config.HotkeyConfig, error) {
	selectedMods, err := zenity.ListMultiple(
		"Modificadores:",
		modOptions,
		zenity.Title(i18n.T("app_name")),
		zenity.DefaultItems(modLabels(current.Modifiers)...),
	)
	if err != nil {
		return current, err
	}
	mods := parseMods(selectedMods)
	if len(mods) == 0 {
		return current, ErrNoModifier
	}

	selectedKey, err := zenity.List(
		"Tecla:",
		keyOptions,
		zenity.Title(i18n.T("app_name")),
		zenity.DefaultItems(keyLabel(current.Key)),
	)
	if err != nil {
		return current, err
	}
	key, ok := parseKey(selectedKey)
	if !ok {
		return current, ErrCanceled
	}

	return config.HotkeyConfig{Modifiers: mods, Key: key}, nil
}

func modLabels(mods []config.Modifier) []string {
	labels := make([]string, 0, len(mods))
	for _, m := range mods {
		for i, v := range modValues {
			if v == m {
				labels = append(labels, modOptions[i])
			}
		}
	}
	return labels
}

func parseMods(labels []string) []config.Modifier {
	mods := make([]config.Modifier, 0, len(labels))
	for _, s := range labels {
		for i, opt := range modOptions {
			if s == opt {
				mods = append(mods, modValues[i])
				break
			}
		}
	}
	return mods
}

func keyLabel(k config.Key) string {
	for i, v := range keyValues {
		if v == k {
			return keyOptions[i]
		}
	}
	return strings.ToUpper(string(k))
}

func parseKey(label string) (config.Key, bool) {
	for i, opt := range keyOptions {
		if label == opt {
			return keyValues[i], true
		}
	}
	return "", false
}

// Rationale explains why caps are needed and reports whether the user accepted.
func Rationale(caps []permission.Capability) bool {
	var b strings.Builder
	b.WriteString(i18n.T("perm_rationale"))
	for _, c := range caps {
		b.WriteString("\n• ")
		b.WriteString(c.Label())
	}

	err := zenity.Question(b.String(),
		zenity.Title(i18n.T("perm_title")),
		zenity.OKLabel(i18n.T("perm_accept")),
		zenity.CancelLabel(i18n.T("perm_cancel")),
	)
	return err == nil
}

// Asker asks for one capability at a time. It implements permission.Asker.
type Asker struct{}

// AskPermission returns false with a nil error when the user declines.
func (Asker) AskPermission(c permission.Capability) (bool, error) {
	err := zenity.Question(i18n.Tf("perm_ask", c.Label()),
		zenity.Title(i18n.T("perm_title")),
	)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrCanceled):
		return false, nil
	default:
		return false, err
	}
}

// ShowInfo shows an informational message.
func ShowInfo(title, message string) {
	zenity.Info(message, zenity.Title(title))
}

// ShowError shows an error message.
func ShowError(title, message string) {
	zenity.Error(message, zenity.Title(title))
}

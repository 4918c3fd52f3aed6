//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"vapajomi/internal/config"
)

// nativeModifier maps a configured modifier onto the macOS key and its
// keycap name.
func nativeModifier(m config.Modifier) (hotkey.Modifier, string, bool) {
	switch m {
	case config.ModCtrl:
		return hotkey.ModCtrl, "Control", true
	case config.ModShift:
		return hotkey.ModShift, "Shift", true
	case config.ModAlt:
		return hotkey.ModOption, "Option", true
	case config.ModSuper:
		return hotkey.ModCmd, "Cmd", true
	}
	return 0, "", false
}

//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"vapajomi/internal/config"
)

// X11 puts Alt on Mod1 and Super on Mod4.
func nativeModifier(m config.Modifier) (hotkey.Modifier, string, bool) {
	switch m {
	case config.ModCtrl:
		return hotkey.ModCtrl, "Ctrl", true
	case config.ModShift:
		return hotkey.ModShift, "Shift", true
	case config.ModAlt:
		return hotkey.Mod1, "Alt", true
	case config.ModSuper:
		return hotkey.Mod4, "Super", true
	}
	return 0, "", false
}

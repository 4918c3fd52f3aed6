//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"vapajomi/internal/config"
)

func nativeModifier(m config.Modifier) (hotkey.Modifier, string, bool) {
	switch m {
	case config.ModCtrl:
		return hotkey.ModCtrl, "Ctrl", true
	case config.ModShift:
		return hotkey.ModShift, "Shift", true
	case config.ModAlt:
		return hotkey.ModAlt, "Alt", true
	case config.ModSuper:
		return hotkey.ModWin, "Win", true
	}
	return 0, "", false
}

// Package hotkey registers the global push-to-talk hotkey.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"vapajomi/internal/config"
)

// ErrUnknownKey is returned for keys the platform layer cannot map.
var ErrUnknownKey = errors.New("hotkey: unknown key")

// repeatGuard swallows auto-repeat keydowns while the key is held.
const repeatGuard = 300 * time.Millisecond

const unregisterTimeout = 500 * time.Millisecond

// Handler delivers press and release of one global hotkey.
type Handler struct {
	mu        sync.Mutex
	hk        *hotkey.Hotkey
	onPress   func()
	onRelease func()
	current   config.HotkeyConfig
	stopCh    chan struct{}
}

// New creates a handler. Callbacks run on the listener goroutine.
func New(onPress, onRelease func()) *Handler {
	return &Handler{onPress: onPress, onRelease: onRelease}
}

// Register replaces the current hotkey with cfg.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	mods, key, err := convert(cfg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	old := h.hk
	h.hk = nil
	h.mu.Unlock()

	if old != nil {
		unregister(old)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", cfg, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.hk = hk
	h.current = cfg
	h.stopCh = make(chan struct{})
	go h.listen(hk, h.stopCh)

	log.Info("hotkey registered", "hotkey", cfg.String())
	return nil
}

// unregister can hang on some X11 setups, so it gets a deadline.
func unregister(hk *hotkey.Hotkey) {
	done := make(chan struct{})
	go func() {
		if err := hk.Unregister(); err != nil {
			log.Debug("hotkey unregister", "err", err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(unregisterTimeout):
		log.Warn("hotkey unregister timed out")
	}
}

func (h *Handler) listen(hk *hotkey.Hotkey, stopCh chan struct{}) {
	var lastDown time.Time
	held := false

	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if held && now.Sub(lastDown) < repeatGuard {
				continue
			}
			lastDown = now
			held = true
			if h.onPress != nil {
				h.onPress()
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
			if !held {
				continue
			}
			held = false
			if h.onRelease != nil {
				h.onRelease()
			}
		}
	}
}

// Unregister releases the hotkey.
func (h *Handler) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	if h.hk == nil {
		return nil
	}
	err := h.hk.Unregister()
	h.hk = nil
	return err
}

// Current returns the registered hotkey.
func (h *Handler) Current() config.HotkeyConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// RunOnMainThread runs fn with the main thread reserved for hotkey events,
// which macOS requires.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

func convert(cfg config.HotkeyConfig) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := keyMap[cfg.Key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownKey, cfg.Key)
	}

	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, m := range cfg.Modifiers {
		if mod, _, ok := nativeModifier(m); ok {
			mods = append(mods, mod)
		}
	}
	return mods, key, nil
}

// Label renders the hotkey with the platform's key names, "Ctrl+Shift+Space".
// Unknown modifiers are skipped.
func Label(cfg config.HotkeyConfig) string {
	parts := make([]string, 0, len(cfg.Modifiers)+1)
	for _, m := range cfg.Modifiers {
		if _, name, ok := nativeModifier(m); ok {
			parts = append(parts, name)
		}
	}
	key := string(cfg.Key)
	if len(key) > 0 {
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	return strings.Join(append(parts, key), "+")
}

var keyMap = map[config.Key]hotkey.Key{
	config.KeySpace:  hotkey.KeySpace,
	config.KeyReturn: hotkey.KeyReturn,
	config.KeyL:      hotkey.KeyL,
	config.KeyV:      hotkey.KeyV,
	config.KeyF1:     hotkey.KeyF1,
	config.KeyF2:     hotkey.KeyF2,
	config.KeyF3:     hotkey.KeyF3,
	config.KeyF4:     hotkey.KeyF4,
	config.KeyF5:     hotkey.KeyF5,
	config.KeyF6:     hotkey.KeyF6,
	config.KeyF7:     hotkey.KeyF7,
	config.KeyF8:     hotkey.KeyF8,
	config.KeyF9:     hotkey.KeyF9,
	config.KeyF10:    hotkey.KeyF10,
	config.KeyF11:    hotkey.KeyF11,
	config.KeyF12:    hotkey.KeyF12,
}

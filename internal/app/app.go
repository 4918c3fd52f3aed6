// Package app wires the assistant together and owns its lifetime.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"vapajomi/internal/audio"
	"vapajomi/internal/auth"
	"vapajomi/internal/config"
	"vapajomi/internal/dialog"
	"vapajomi/internal/gui"
	"vapajomi/internal/hotkey"
	"vapajomi/internal/i18n"
	"vapajomi/internal/models"
	"vapajomi/internal/notify"
	"vapajomi/internal/permission"
	"vapajomi/internal/profile"
	"vapajomi/internal/screen"
	"vapajomi/internal/speech"
	"vapajomi/internal/startup"
	"vapajomi/internal/tray"
	"vapajomi/internal/tts"
	"vapajomi/internal/ui"
)

const dialTimeout = 5 * time.Second

// App is the running assistant.
type App struct {
	config        *config.Config
	loop          *ui.Loop
	recorder      *audio.Recorder
	auth          *auth.SQLite
	profiles      profile.Store
	closeProfiles func() error
	modelManager  *models.Manager
	speechFactory *speech.Factory
	prompter      *permission.Prompter
	notifier      *notify.Notifier
	window        *gui.Window
	flow          *screen.Flow
	tray          *tray.Tray
	hotkey        *hotkey.Handler

	mu         sync.Mutex
	cancel     context.CancelFunc
	startupWin *startup.Window
	closeOnce  sync.Once
}

// New opens every backend. cfg is owned by the App from now on.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	i18n.SetLanguage(UILanguage(cfg))

	authDB, err := auth.OpenSQLite(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	recorder, err := audio.New()
	if err != nil {
		authDB.Close()
		return nil, err
	}

	modelManager, err := models.NewManager(cfg.ModelsDir(), nil)
	if err != nil {
		recorder.Close()
		authDB.Close()
		return nil, err
	}

	profiles, closeProfiles := OpenProfiles(ctx, cfg.RedisURL(), profile.NewSQLite(authDB.DB()))

	a := &App{
		config:        cfg,
		loop:          ui.NewLoop(),
		recorder:      recorder,
		auth:          authDB,
		profiles:      profiles,
		closeProfiles: closeProfiles,
		modelManager:  modelManager,
		speechFactory: speech.NewFactory(modelManager, nil),
		notifier:      notify.New(cfg.NotificationsEnabled()),
	}
	a.prompter = permission.NewPrompter(cfg, dialog.Asker{}, a.loop)
	service := speech.NewLocal(recorder, a.speechFactory, a.prompter, a.loop, speech.DefaultLocalConfig())

	a.window = gui.New(a.loop, gui.Options{
		Level:       func() float32 { return audio.Level(recorder.Samples()) },
		Fallback:    a.notifier,
		OnListening: a.onListening,
		OnClose:     a.Quit,
	})

	a.tray = tray.New(tray.Callbacks{
		OnListen: func() { a.loop.Post(a.flow.Listen) },
		OnNotificationsToggle: func() bool {
			enabled := a.config.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnHotkeyClick: func() { go a.changeHotkey() },
		OnLogout:      func() { a.loop.Post(a.flow.Logout) },
		OnQuit:        a.Close,
	}, cfg.NotificationsEnabled())

	nav := screen.NewNavigator(func(s screen.Screen) {
		a.window.SetScreen(s)
		_, home := s.(*screen.Home)
		a.tray.SetSignedIn(home)
	})
	a.flow = screen.NewFlow(screen.Deps{
		Dispatcher:  a.loop,
		Auth:        authDB,
		Profiles:    profiles,
		Speech:      service,
		Permissions: a.prompter,
		NewSynthesizer: func(onInit func(bool)) tts.Synthesizer {
			return tts.New(cfg.TTSBinary(), a.loop, onInit)
		},
		Notifier: a.window,
		Locale:   cfg.Locale(),
	}, a.window, nav)

	a.hotkey = hotkey.New(a.onHotkeyPress, a.onHotkeyRelease)

	return a, nil
}

// UILanguage picks the interface language: the explicit setting, else the
// speech locale.
func UILanguage(cfg *config.Config) i18n.Language {
	for _, lang := range i18n.AvailableLanguages() {
		if string(lang) == cfg.UILanguage() {
			return lang
		}
	}
	return i18n.FromLocale(cfg.Locale())
}

// OpenProfiles connects to Redis when url is set. Without it, or when the
// server is unreachable, profiles go to local, which the caller closes.
func OpenProfiles(ctx context.Context, url string, local profile.Store) (profile.Store, func() error) {
	noop := func() error { return nil }
	if url == "" {
		return local, noop
	}

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	r, err := profile.DialRedis(ctx, url)
	if err != nil {
		log.Warn("profile store unavailable, keeping profiles locally", "err", err)
		return local, noop
	}
	return r, r.Close
}

// Run shows the tray and the main window and blocks until the app quits.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	go a.loop.Run(ctx)

	a.tray.Run(func() {
		if err := a.hotkey.Register(a.config.Hotkey()); err != nil {
			log.Error("hotkey registration failed", "err", err)
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}

		a.window.Open()
		a.loop.Post(a.flow.Start)

		go a.loadRecognizer(ctx)
	})

	a.Close()
}

// loadRecognizer downloads the speech model when missing, then loads it.
// Until it finishes, recognition reports the service as unavailable.
func (a *App) loadRecognizer(ctx context.Context) {
	info, ok := models.Resolve(a.config.ModelID(), a.config.Locale())
	if !ok {
		log.Error("no speech model for locale", "locale", a.config.Locale())
		a.notifier.Error(i18n.T("error_model_load"))
		return
	}

	win := startup.New()
	a.mu.Lock()
	a.startupWin = win
	a.mu.Unlock()
	defer win.Hide()

	a.tray.SetState(tray.StateProcessing)
	defer a.tray.SetState(tray.StateIdle)
	win.Show()

	if !a.modelManager.IsDownloaded(info) {
		log.Info("downloading speech model", "model", info.ID)
		progress := make(chan models.Progress, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := range progress {
				win.SetProgress(p)
			}
		}()

		err := a.modelManager.Download(ctx, info, progress)
		close(progress)
		<-done
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("model download failed", "model", info.ID, "err", err)
				a.notifier.Error(i18n.T("error_model_download"))
			}
			return
		}
	}

	win.SetStatus(i18n.T("startup_loading"), info.Name)
	if err := a.speechFactory.Load(info.ID); err != nil {
		log.Error("model load failed", "model", info.ID, "err", err)
		a.notifier.Error(i18n.T("error_model_load"))
		return
	}
	a.config.SetModelID(info.ID)

	log.Info("speech model ready", "model", info.ID)
	a.notifier.Ready()
}

func (a *App) onHotkeyPress() {
	a.loop.Post(a.flow.Listen)
}

func (a *App) onHotkeyRelease() {
	a.loop.Post(a.flow.StopListening)
}

func (a *App) onListening(listening bool) {
	if listening {
		a.tray.SetState(tray.StateListening)
	} else {
		a.tray.SetState(tray.StateIdle)
	}
}

func (a *App) changeHotkey() {
	hk, err := dialog.SelectHotkey(a.config.Hotkey())
	switch {
	case errors.Is(err, dialog.ErrCanceled):
		return
	case err != nil:
		dialog.ShowError(i18n.T("app_name"), err.Error())
		return
	}

	if err := a.hotkey.Register(hk); err != nil {
		log.Error("hotkey registration failed", "hotkey", hotkey.Label(hk), "err", err)
		a.notifier.Error(i18n.T("error_hotkey_register"))
		return
	}
	a.config.SetHotkey(hk)
}

// Quit closes the app and the tray.
func (a *App) Quit() {
	a.Close()
	a.tray.Quit()
}

// Close releases every resource. Safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if err := a.hotkey.Unregister(); err != nil {
			log.Debug("hotkey unregister", "err", err)
		}

		a.mu.Lock()
		cancel, win := a.cancel, a.startupWin
		a.mu.Unlock()

		if cancel != nil {
			// Screens must dispose on the loop before it stops.
			a.loop.Call(a.flow.Shutdown)
			a.loop.Stop()
			cancel()
		} else {
			a.flow.Shutdown()
		}

		a.window.Close()
		if win != nil {
			win.Hide()
		}

		a.recorder.Close()
		a.speechFactory.Close()
		if err := a.auth.Close(); err != nil {
			log.Warn("closing auth database", "err", err)
		}
		if err := a.closeProfiles(); err != nil {
			log.Warn("closing profile store", "err", err)
		}
	})
}

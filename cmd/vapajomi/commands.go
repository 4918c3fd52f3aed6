package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"vapajomi/internal/app"
	"vapajomi/internal/auth"
	"vapajomi/internal/config"
	"vapajomi/internal/hotkey"
	"vapajomi/internal/logging"
	"vapajomi/internal/models"
	"vapajomi/internal/profile"
)

type cli struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "vapajomi",
		Short:         "Voice assistant with sign-in and spoken feedback",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.cfg = config.New(c.configPath)
			level := c.cfg.LogLevel()
			if c.logLevel != "" {
				level = c.logLevel
			}
			logging.Setup(cmd.ErrOrStderr(), level)
		},
		RunE: c.runApp,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.json (default: next to the binary)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(c.whoamiCmd(), c.logoutCmd(), c.modelsCmd())
	return root
}

func (c *cli) runApp(cmd *cobra.Command, args []string) error {
	log.Info("starting", "version", Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var runErr error
	// The tray and the hotkey both need the main thread on macOS.
	hotkey.RunOnMainThread(func() {
		application, err := app.New(ctx, c.cfg)
		if err != nil {
			runErr = fmt.Errorf("init: %w", err)
			return
		}
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				application.Quit()
			case <-done:
			}
		}()
		log.Info("ready", "hotkey", hotkey.Label(c.cfg.Hotkey()))
		application.Run()
		close(done)
	})
	return runErr
}

func (c *cli) openAuth(ctx context.Context) (*auth.SQLite, error) {
	return auth.OpenSQLite(ctx, c.cfg.DatabasePath())
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := c.openAuth(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			store, closeStore := app.OpenProfiles(ctx, c.cfg.RedisURL(), profile.NewSQLite(db.DB()))
			defer closeStore()

			return whoami(ctx, cmd.OutOrStdout(), db, store)
		},
	}
}

func whoami(ctx context.Context, out io.Writer, backend auth.Backend, store profile.Store) error {
	id, ok := backend.CurrentUser(ctx)
	if !ok {
		fmt.Fprintln(out, "not signed in")
		return nil
	}

	p, err := store.Get(ctx, id)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		fmt.Fprintf(out, "%s (no profile)\n", id)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(out, "%s\t%s\t%s\n", id, p.Name, p.Email)
	return nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openAuth(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return db.SignOut(cmd.Context())
		},
	}
}

func (c *cli) modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage offline speech models",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known models, * marks downloaded ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.NewManager(c.cfg.ModelsDir(), nil)
			if err != nil {
				return err
			}
			listModels(cmd.OutOrStdout(), m, c.cfg.ModelID())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "download [model-id]",
		Short: "Download a model, by default the one for the configured locale",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := c.cfg.ModelID()
			if len(args) == 1 {
				id = args[0]
				if _, ok := models.Get(id); !ok {
					return fmt.Errorf("unknown model %q", id)
				}
			}
			info, ok := models.Resolve(id, c.cfg.Locale())
			if !ok {
				return fmt.Errorf("no model for locale %q", c.cfg.Locale())
			}

			m, err := models.NewManager(c.cfg.ModelsDir(), nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return download(ctx, cmd.ErrOrStderr(), m, info)
		},
	})

	return cmd
}

func listModels(out io.Writer, m *models.Manager, selected string) {
	for _, info := range models.Registry {
		mark := " "
		if m.IsDownloaded(info) {
			mark = "*"
		}
		current := ""
		if info.ID == selected {
			current = " (selected)"
		}
		fmt.Fprintf(out, "%s %-14s %-3s %s%s\n", mark, info.ID, info.Language, info.Name, current)
	}
}

func download(ctx context.Context, out io.Writer, m *models.Manager, info models.ModelInfo) error {
	progress := make(chan models.Progress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := -1
		for p := range progress {
			pct := int(p.Fraction() * 100)
			if pct != last {
				last = pct
				fmt.Fprintf(out, "\r%s %3d%%", info.ID, pct)
			}
		}
		fmt.Fprintln(out)
	}()

	err := m.Download(ctx, info, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("download %s: %w", info.ID, err)
	}
	log.Info("model ready", "model", info.ID, "path", m.Path(info))
	return nil
}

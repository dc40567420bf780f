package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Zachkp/folio/internal/config"
	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/logging"
	"github.com/Zachkp/folio/internal/pdf"
	"github.com/Zachkp/folio/internal/profile"
	"github.com/Zachkp/folio/internal/store"
	"github.com/Zachkp/folio/internal/web"
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portfolio web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	prof, err := loadProfile(cfg.Profile.Path)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	holder := profile.NewHolder(prof)

	opts := web.Options{
		Profiles:      holder,
		ThemeMaxAge:   cfg.Theme.MaxAge,
		BaseURL:       cfg.ResolvedBaseURL(),
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
		SecureCookies: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
		Logger:        logger,
	}

	var db *store.SQLiteStore
	if cfg.Database.Path != "" {
		db, err = store.NewSQLiteStore(cfg.Database.Path, logger)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		opts.Analytics = db
	}

	switch cfg.Theme.Store {
	case config.ThemeStoreMemory:
		opts.Preferences = web.NewMemoryPreferences()
	case config.ThemeStoreSQLite:
		opts.Preferences = db
	case config.ThemeStoreRedis:
		rp, err := store.NewRedisPreferences(ctx, cfg.Redis.URL, cfg.Theme.MaxAge)
		if err != nil {
			return fmt.Errorf("connecting theme store: %w", err)
		}
		defer rp.Close()
		opts.Preferences = rp
	}

	if cfg.SMTPConfigured() {
		opts.Mailer = contact.NewMailer(contact.Config{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.SMTP.To,
		}, logger)
	} else {
		logger.Info("contact form disabled: SMTP_USER and SMTP_PASS not set")
	}

	exporter := pdf.NewExporter(cfg.PDF.ChromePath, cfg.PDF.Timeout, logger)
	if chrome, err := exporter.LookupChrome(); err != nil {
		logger.Info("pdf export disabled", zap.Error(err))
	} else {
		logger.Debug("pdf export enabled", zap.String("chrome", chrome))
		opts.Exporter = exporter
	}

	if cfg.Profile.Watch {
		w, err := profile.NewWatcher(cfg.Profile.Path, holder, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv, err := web.New(opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer srv.Close()

	printBanner(cfg, prof)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting folio", zap.String("addr", cfg.Server.Addr), zap.String("theme_store", cfg.Theme.Store))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		srv.CleanupLoop(gctx)
		return nil
	})
	return g.Wait()
}

func printBanner(cfg *config.Config, p *profile.Profile) {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	cyan.Printf("\n    folio · %s\n\n", p.Name)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.ResolvedBaseURL())
	green.Print("    ▶ ")
	fmt.Printf("Profile: ")
	if cfg.Profile.Path == "" {
		gray.Println("(embedded)")
	} else {
		fmt.Println(cfg.Profile.Path)
	}
	green.Print("    ▶ ")
	fmt.Printf("Theme:   %s\n\n", cfg.Theme.Store)
}

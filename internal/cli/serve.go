package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/seed"
	"fintrack/internal/services"
	"fintrack/internal/workspace"
)

const (
	cacheSweepInterval = 5 * time.Minute
	shutdownTimeout    = 30 * time.Second
)

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := SignalContext(cmd.Context())
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := SetupLogger(cfg.LogLevel)
	flush := InitReporting(cfg, logger)
	defer flush()

	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}
	data, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	workspaces := workspace.NewRegistry(data, cfg.MaxSessions, cfg.SessionTTL, nil)
	sessions := auth.NewService(res.Users, logger, auth.Options{
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Timeout:     cfg.AuthTimeout,
		OnExpire:    workspaces.Drop,
	})
	act := services.NewActivityService(res.Publisher, logger)

	checkers := services.DefaultCheckers(cfg.SavingsReminderWindow)
	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Auth:               sessions,
		Workspaces:         workspaces,
		Activity:           act,
		Formatter:          formatter,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CookieSecure:       cfg.CookieSecure,
		Checks:             res.Checks,
		AlertCheckers:      checkers,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	caches := cache.NewManager(logger)
	caches.Register("sessions", sessions.Sessions())
	caches.Register("workspaces", workspaces.Cache())

	alerts := services.NewAlertProcessor(workspaces, checkers, act, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"currency", formatter.Currency(),
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return caches.Run(gctx, cacheSweepInterval) })
	g.Go(func() error { return srv.Limiter().Run(gctx) })
	g.Go(func() error { return alerts.Run(gctx, cfg.AlertSchedule) })

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		return err
	}

	logger.Info("Server stopped gracefully", "active_sessions", sessions.ActiveSessions())
	return nil
}

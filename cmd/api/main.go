package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/productivity-backend-go/internal/app"
	"github.com/cmlabs-hris/productivity-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/productivity-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/cron"
	roleService "github.com/cmlabs-hris/productivity-backend-go/internal/service/role"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	scheduler := cron.NewScheduler(cron.WithLogger(logger))
	productivityJobs := cron.NewProductivityJobs(
		core.ScoreService,
		core.BatchService,
		core.Roles,
		core.Location,
		cfg.Scheduler.RecalcTodayInterval,
		cfg.Scheduler.RoleRefreshInterval,
	)
	productivityJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	if path := cfg.Scoring.RoleProfilesFile; path != "" {
		watcher := roleService.NewFileWatcher(path, core.Roles, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("Role profiles watcher stopped", "error", err)
			}
		}()
	}

	productivityHandler := appHTTP.NewProductivityHandler(core.ScoreService, core.BatchService)
	roleHandler := appHTTP.NewRoleHandler(core.Roles)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		Logger:         logger,
	}, productivityHandler, roleHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", server.Addr, "timezone", core.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

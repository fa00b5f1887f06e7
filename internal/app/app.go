// Package app wires configuration, storage and services into a runnable
// scoring core shared by the API server and the recalc CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/productivity-backend-go/internal/config"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/productivity-backend-go/internal/repository/postgresql"
	productivityService "github.com/cmlabs-hris/productivity-backend-go/internal/service/productivity"
	roleService "github.com/cmlabs-hris/productivity-backend-go/internal/service/role"
)

const (
	appName    = "productivity-scoring"
	appVersion = "v1.0.0"
)

type App struct {
	Config       *config.Config
	DB           *database.DB
	Location     *time.Location
	Roles        *roleService.Cache
	ScoreService productivity.ScoreService
	BatchService productivity.BatchService
}

// NewLogger builds the process logger: JSON on stdout with ECS field names.
func NewLogger(cfg *config.Config) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
}

// Connect opens the database only, for commands that do not score.
func Connect(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          database.DefaultPoolOptions.MinConns,
		MaxConnIdleTime:   database.DefaultPoolOptions.MaxConnIdleTime,
		HealthCheckPeriod: database.DefaultPoolOptions.HealthCheckPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New connects to the database, loads the first role snapshot and builds the
// scoring services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	fallback, err := cfg.FallbackProfile()
	if err != nil {
		return nil, err
	}

	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var source role.ProfileRepository
	if cfg.Scoring.RoleProfilesFile != "" {
		source = roleService.NewFileSource(cfg.Scoring.RoleProfilesFile)
		slog.Info("Loading role profiles from file", "path", cfg.Scoring.RoleProfilesFile)
	} else {
		source = postgresql.NewRoleProfileRepository(db)
	}

	roles, err := roleService.NewCache(ctx, source, fallback)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionRepo := postgresql.NewClockSessionRepository(db)
	activityRepo := postgresql.NewActivityRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	scoreRepo := postgresql.NewScoreRepository(db)

	return &App{
		Config:       cfg,
		DB:           db,
		Location:     loc,
		Roles:        roles,
		ScoreService: productivityService.NewScoreService(sessionRepo, activityRepo, employeeRepo, scoreRepo, roles, loc),
		BatchService: productivityService.NewBatchService(sessionRepo, activityRepo, scoreRepo, roles, loc, cfg.Scoring.BatchWorkers),
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

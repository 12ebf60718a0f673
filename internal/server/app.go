// Package server initializes and runs the task-manager application: it
// opens the database, applies migrations, wires the services, and serves
// the REST API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"gestortareas/internal/logging"
	"gestortareas/internal/server/config"
	"gestortareas/internal/server/email"
	"gestortareas/internal/server/httpapi"
	"gestortareas/internal/server/migrations"
	"gestortareas/internal/server/recovery"
	"gestortareas/internal/server/refreshtokens"
	"gestortareas/internal/server/tasks"
	"gestortareas/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return nil, err
	}

	usersRepo := users.NewPostgresRepository(db)
	refreshRepo := refreshtokens.NewPostgresRepository(db)
	recoveryRepo := recovery.NewPostgresRepository(db)
	tasksRepo := tasks.NewPostgresRepository(db)

	mailer := email.NewClient(cfg)

	usersSvc := users.NewService(usersRepo, refreshRepo, cfg)
	recoverySvc := recovery.NewService(recoveryRepo, usersRepo, refreshRepo, mailer, cfg)
	tasksSvc := tasks.NewService(tasksRepo)

	api := httpapi.NewServer(usersSvc, recoverySvc, tasksSvc, cfg, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until the context is cancelled or the listener fails,
// then drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}

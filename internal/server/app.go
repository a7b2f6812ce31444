// Package server initializes and runs the application server. It opens the
// database, runs migrations, wires the services and the HTTP router, and
// handles graceful shutdown.
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

	"contactsvc/internal/logging"
	"contactsvc/internal/server/auth"
	"contactsvc/internal/server/config"
	"contactsvc/internal/server/mailer"
	"contactsvc/internal/server/repositories/repomanager"
	"contactsvc/internal/server/services"
	transport "contactsvc/internal/server/transport/http"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	authService    *services.AuthService
	contactService *services.ContactService
	userService    *services.UserService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	mail := mailer.NewLogMailer(logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		authService:    services.NewAuthService(db, m, codec, mail, logger, cfg),
		contactService: services.NewContactService(db, m),
		userService:    services.NewUserService(db, m, cfg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) router() http.Handler {
	return transport.NewRouter(transport.RouterConfig{
		Auth:        transport.NewAuthHandler(app.authService),
		Contacts:    transport.NewContactHandler(app.contactService),
		Users:       transport.NewUserHandler(app.userService),
		RequireAuth: transport.NewAuthenticator(app.authService).Handler,
		Logger:      app.logger,
		Metrics:     true,
	})
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then shuts the server down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return app.db.Close()
}

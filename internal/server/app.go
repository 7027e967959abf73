// Package server initializes and runs the credential service: it opens the
// database, applies migrations, wires the service layer to the HTTP API, and
// handles graceful shutdown plus the background purge of expired token rows.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/myfinance/finauth/internal/logging"
	"github.com/myfinance/finauth/internal/server/auth"
	"github.com/myfinance/finauth/internal/server/config"
	"github.com/myfinance/finauth/internal/server/httpapi"
	"github.com/myfinance/finauth/internal/server/identity"
	"github.com/myfinance/finauth/internal/server/repositories/repomanager"
	"github.com/myfinance/finauth/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	service *services.CredentialService
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.SecretKey, cfg.SigningAlgorithm,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration,
		cfg.ResetTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	provider := identity.NewHTTPProvider(cfg.IdentityProviderURL,
		cfg.IdentityProviderKey, cfg.IdentityProviderTimeout)
	mailer := &services.LogMailer{Log: logger.With("module", "mailer")}

	svc := services.NewCredentialService(db, rm, issuer, provider, mailer,
		logger.With("module", "credentials"))

	return &App{config: cfg, logger: logger, db: db, service: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handler := httpapi.NewHandler(app.service, app.logger.With("module", "httpapi"))

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: httpapi.NewRouter(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// startExpiredSweep periodically purges expired revocation and ledger rows.
func (app *App) startExpiredSweep(ctx context.Context) {
	ticker := time.NewTicker(app.config.RevokedSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.service.PurgeExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "expired token sweep failed", "error", err)
				continue
			}
			app.logger.Info(ctx, "expired token sweep done", "removed", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startExpiredSweep(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

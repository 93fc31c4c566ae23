// Package server assembles the backend: database, optional collaborators
// (redis, AMQP, Sentry), services, the REST API, the gRPC health endpoint
// and background jobs, and runs them until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/authprovider"
	"github.com/journeyconnect/journeyconnect/internal/server/cache"
	"github.com/journeyconnect/journeyconnect/internal/server/config"
	"github.com/journeyconnect/journeyconnect/internal/server/events"
	"github.com/journeyconnect/journeyconnect/internal/server/httpapi"
	"github.com/journeyconnect/journeyconnect/internal/server/jobs"
	"github.com/journeyconnect/journeyconnect/internal/server/observability"
	"github.com/journeyconnect/journeyconnect/internal/server/repositories/repomanager"
	"github.com/journeyconnect/journeyconnect/internal/server/services"
	"github.com/journeyconnect/journeyconnect/internal/server/storage"

	gs "github.com/journeyconnect/journeyconnect/internal/server/grpc"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const (
	settingsCacheTTL  = 10 * time.Minute
	providerTimeout   = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	healthInterval    = 15 * time.Second
	sessionSweepEvery = 30 * time.Minute
	amqpAttempts      = 5
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	rm        repomanager.RepositoryManager
	redis     *redis.Client
	publisher events.Publisher
	flush     func()
	api       *httpapi.Server
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp connects to every backing service, runs migrations and builds the
// service graph. Redis and AMQP are optional and fall back to no-ops when
// their addresses are empty.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, c.Env)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger, rm: repomanager.NewPostgresRepositoryManager()}

	app.flush, err = observability.InitSentry(c.SentryDSN, c.Env, Version)
	if err != nil {
		logger.Warn(ctx, "sentry disabled", "error", err)
	}

	app.db, err = openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := app.db.PingContext(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := app.rm.RunMigrations(ctx, app.db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	settingsCache := app.initCache(ctx)

	app.publisher = events.Nop{}
	if c.AMQPURL != "" {
		p, err := events.Connect(ctx, c.AMQPURL, events.DefaultExchange, amqpAttempts, logger)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("amqp init error: %w", err)
		}
		app.publisher = p
	}

	store, err := storage.NewS3Storage(ctx, storage.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	managers := services.NewRecordManagers(app.db, app.publisher)
	settings := services.NewSettingsService(app.db, app.rm, settingsCache, app.publisher)
	provider := authprovider.NewClient(c.AuthProviderURL, providerTimeout)

	app.api = httpapi.NewServer(httpapi.Deps{
		DB:               app.db,
		Sessions:         services.NewSessionService(app.db, app.rm, provider, c),
		DrugTests:        managers.DrugTests,
		Meetings:         managers.Meetings,
		Devotions:        managers.Devotions,
		ReadingMaterials: managers.ReadingMaterials,
		CalendarEvents:   managers.CalendarEvents,
		Payments:         services.NewPaymentService(app.db, app.rm, managers.RentPayments, settings, app.publisher, logger),
		Messages:         services.NewMessageService(app.db, app.rm, managers.Messages),
		Settings:         settings,
		Users:            services.NewUserService(app.db, app.rm),
		Dashboard:        services.NewDashboardService(app.db, app.rm),
		Uploads:          services.NewUploadService(store),
	}, httpapi.Options{CookieSecure: c.CookieSecure, SessionValidity: c.SessionValidity}, logger)

	return app, nil
}

func (app *App) initCache(ctx context.Context) cache.Settings {
	if app.config.RedisAddr == "" {
		return cache.Nop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		app.logger.Warn(ctx, "redis unavailable, settings cache disabled", "error", err)
		_ = client.Close()
		return cache.Nop{}
	}
	app.redis = client
	return cache.NewRedisSettings(client, settingsCacheTTL, app.logger)
}

// Run serves HTTP and gRPC and runs the background jobs until ctx is
// cancelled or a termination signal arrives, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc", app.config.GRPCAddr, "version", Version)

	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	grpcServer := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db.PingContext, healthInterval)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})

	runner := jobs.New(gctx, app.logger)
	runner.Every(app.config.ReminderInterval, "rent_reminders",
		jobs.NewRentReminders(app.db, app.rm, app.publisher, app.logger).Run)
	runner.Every(sessionSweepEvery, "session_cleanup",
		jobs.SessionCleanup(app.db, app.rm, app.logger, time.Now))
	g.Go(func() error {
		<-gctx.Done()
		runner.Wait()
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "app stopped")
	return err
}

func (app *App) close() {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Warn(context.Background(), "closing publisher", "error", err)
		}
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.flush != nil {
		app.flush()
	}
}

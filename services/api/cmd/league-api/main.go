package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/bus"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/telemetry"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/api"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/api/internal/config"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/audit"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

const serviceName = "league-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger, err := telemetry.NewLogger(serviceName, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	log.Logger = logger

	shutdownTracing, middleware, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	orm, err := db.OpenORM(pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("open orm")
	}

	opts := []league.Option{
		league.WithLogger(logger),
		league.WithMaxCodeAttempts(cfg.MaxCodeAttempts),
	}

	if cfg.EventsEnabled() {
		b, err := bus.New(cfg.NATSURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect nats")
		}
		defer b.Close()

		if err := b.EnsureStream(league.StreamName, league.SubjectAll); err != nil {
			logger.Fatal().Err(err).Msg("ensure event stream")
		}
		opts = append(opts, league.WithPublisher(b))

		if cfg.AuditEnabled {
			store, err := audit.NewStore(pool)
			if err != nil {
				logger.Fatal().Err(err).Msg("audit store")
			}
			ingestor, err := audit.NewIngestor(b, store, logger)
			if err != nil {
				logger.Fatal().Err(err).Msg("audit ingestor")
			}
			if err := ingestor.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msg("start audit ingestor")
			}
			defer func() { _ = ingestor.Close() }()
		}
	} else {
		logger.Info().Msg("NATS_URL not set, league events disabled")
	}

	services, err := league.New(league.NewORMStores(orm), opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("init league services")
	}

	a, err := api.NewFromServices(services, api.Config{
		SigningKey:     []byte(cfg.JWTSigningKey),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Ready:          func(ctx context.Context) error { return db.Ping(ctx, pool) },
		Middleware:     middleware,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init api")
	}
	handler, err := a.Routes()
	if err != nil {
		logger.Fatal().Err(err).Msg("build routes")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting league-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown server")
	}
}

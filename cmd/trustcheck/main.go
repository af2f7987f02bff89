package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	aiadapter "github.com/payamancoders/trustcheck/internal/adapter/ai"
	cacheadapter "github.com/payamancoders/trustcheck/internal/adapter/cache"
	eventsadapter "github.com/payamancoders/trustcheck/internal/adapter/events"
	"github.com/payamancoders/trustcheck/internal/bootstrap"
	"github.com/payamancoders/trustcheck/internal/checker"
	"github.com/payamancoders/trustcheck/internal/config"
	"github.com/payamancoders/trustcheck/internal/credibility"
	httptransport "github.com/payamancoders/trustcheck/internal/http"
	"github.com/payamancoders/trustcheck/internal/http/handler"
	httpmiddleware "github.com/payamancoders/trustcheck/internal/http/middleware"
	"github.com/payamancoders/trustcheck/internal/jwt"
	apimiddleware "github.com/payamancoders/trustcheck/internal/middleware"
	"github.com/payamancoders/trustcheck/internal/repository"
	"github.com/payamancoders/trustcheck/internal/server"
	"github.com/payamancoders/trustcheck/internal/service"
	"github.com/payamancoders/trustcheck/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newEmployerRepository,
			newEmployerLocker,
			newEventPublisher,
			newEmailChecker,
			newOrchestrator,
			newCredibilityAnalyzer,
			service.NewVerificationService,
			newVerificationHandler,
			newTokenGenerator,
			newAuthMiddleware,
			newRateLimiter,
			newReportRateLimiter,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureSchema, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", cfg.ServiceName))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newEmployerRepository(pool *pgxpool.Pool) repository.EmployerRepository {
	return repository.NewPostgresEmployerRepo(pool)
}

// newEmployerLocker uses Redis when REDIS_ADDR is set. Without it, optimistic versioning in
// the repository is the only guard against concurrent updates.
func newEmployerLocker(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.EmployerLocker, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, per-employer locking disabled")
		return cacheadapter.NoopLocker{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisEmployerLocker(client, 0, logger), nil
}

func newEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (service.EventPublisher, error) {
	if cfg.PubSubProjectID == "" {
		logger.Info("PUBSUB_PROJECT_ID not set, status events are not published")
		return eventsadapter.NoopPublisher{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	publisher, err := eventsadapter.NewPubSubPublisher(ctx, cfg.PubSubProjectID, cfg.PubSubTopic, cfg.PubSubCredentials, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

func newEmailChecker(cfg config.Config, logger *zap.Logger) *checker.Checker {
	return checker.New(nil, cfg.DNSTimeout, cfg.DNSCacheTTL, logger)
}

func newOrchestrator(emails *checker.Checker, node *snowflake.Node) *service.Orchestrator {
	return service.NewOrchestrator(emails, node)
}

func newCredibilityAnalyzer(cfg config.Config, logger *zap.Logger) service.CredibilityAnalyzer {
	completer := aiadapter.NewCompleter(cfg.AI, nil, logger)
	logger.Info("credibility analysis configured",
		zap.String("provider", cfg.AI.Provider),
		zap.Bool("model_enabled", completer != nil),
		zap.Duration("timeout", cfg.AI.Timeout),
	)
	return credibility.NewAnalyzer(completer, cfg.AI.Timeout, logger)
}

func newVerificationHandler(svc *service.VerificationService, logger *zap.Logger) *handler.VerificationHandler {
	return handler.NewVerificationHandler(svc, logger)
}

func newTokenGenerator(cfg config.Config) (*jwt.Generator, error) {
	return jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
}

func newAuthMiddleware(tokens *jwt.Generator) *httpmiddleware.Auth {
	return httpmiddleware.NewAuth(tokens)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM, apimiddleware.ByClientIP)
}

func newReportRateLimiter(cfg config.Config) *apimiddleware.ReportRateLimiter {
	return apimiddleware.NewReportRateLimiter(cfg.ReportRateLimitRPM)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"transparency/internal/access"
	"transparency/internal/audit"
	"transparency/internal/audit/outbox"
	"transparency/internal/dashboard"
	"transparency/internal/esic/deadline"
	esicHandler "transparency/internal/esic/handler"
	esicMetrics "transparency/internal/esic/metrics"
	"transparency/internal/esic/protocol"
	esicService "transparency/internal/esic/service"
	requestStore "transparency/internal/esic/store/request"
	financeHandler "transparency/internal/finance/handler"
	financeMetrics "transparency/internal/finance/metrics"
	financeService "transparency/internal/finance/service"
	recordStore "transparency/internal/finance/store/record"
	httpapi "transparency/internal/http"
	"transparency/internal/identity"
	"transparency/internal/platform/config"
	"transparency/internal/platform/httpserver"
	"transparency/internal/platform/logger"
	"transparency/internal/platform/metrics"
	"transparency/internal/platform/postgres"
	redisClient "transparency/internal/platform/redis"
	"transparency/internal/ratelimit"
	ratelimitMetrics "transparency/internal/ratelimit/metrics"
	"transparency/pkg/domain"
	"transparency/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

type outboxStore interface {
	audit.Store
	outbox.Source
}

type infra struct {
	db       *sql.DB
	redis    *redisClient.Client
	requests esicService.RequestStore
	records  financeService.RecordStore
	outbox   outboxStore
	tx       esicService.TxRunner
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	policy, err := access.NewPolicy()
	if err != nil {
		return fmt.Errorf("load access policy: %w", err)
	}

	deps, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close(log)

	protocols, err := buildProtocols(cfg, deps, loc)
	if err != nil {
		return err
	}

	publisher := audit.NewPublisher(deps.outbox)
	esic := esicService.New(deps.requests, protocols, policy, deadline.New(loc),
		esicService.WithLogger(log),
		esicService.WithAuditPublisher(publisher),
		esicService.WithMetrics(esicMetrics.New()),
		esicService.WithTx(deps.tx),
	)
	finance := financeService.New(deps.records, policy,
		financeService.WithLogger(log),
		financeService.WithAuditPublisher(publisher),
		financeService.WithMetrics(financeMetrics.New()),
		financeService.WithTx(deps.tx),
	)

	esicRoutes := esicHandler.New(esic, log)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:      log,
		Validator:   identity.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience),
		Observer:    metrics.New(),
		Metrics:     metrics.Handler(),
		Checks:      deps.healthChecks(),
		PublicLimit: buildPublicLimit(cfg, deps, log),
		Public:      []httpapi.PublicRoutes{esicRoutes},
		Protected: []httpapi.Routes{
			esicRoutes,
			financeHandler.New(finance, log),
			dashboard.NewHandler(dashboard.NewService(esic, finance), log),
		},
	})

	producer, closeProducer, err := buildProducer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeProducer()

	relay := outbox.NewRelay(deps.outbox, producer,
		outbox.WithInterval(cfg.Kafka.PollInterval),
		outbox.WithBatchSize(cfg.Kafka.BatchSize),
		outbox.WithLogger(log),
	)

	srv := httpserver.New(cfg.Addr, router, httpserver.Timeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Read:       cfg.HTTP.ReadTimeout,
		Write:      cfg.HTTP.WriteTimeout,
		Idle:       cfg.HTTP.IdleTimeout,
	})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting transparency server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	deps := &infra{}

	rc, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	deps.redis = rc

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		deps.requests = requestStore.NewInMemory()
		deps.records = recordStore.NewInMemory()
		deps.outbox = outbox.NewMemory()
		deps.tx = tx.Passthrough{}
		return deps, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		deps.close(log)
		return nil, err
	}
	deps.db = db
	if err := postgres.Migrate(ctx, db); err != nil {
		deps.close(log)
		return nil, err
	}
	deps.requests = requestStore.NewPostgres(db)
	deps.records = recordStore.NewPostgres(db)
	deps.outbox = outbox.NewPostgres(db)
	deps.tx = tx.NewPostgres(db)
	return deps, nil
}

func (d *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{}
	if d.db != nil {
		checks["postgres"] = d.db.PingContext
	}
	if d.redis != nil {
		checks["redis"] = d.redis.Health
	}
	return checks
}

func (d *infra) close(log *slog.Logger) {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn("close redis", "error", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Warn("close postgres", "error", err)
		}
	}
}

func buildProtocols(cfg config.Server, deps *infra, loc *time.Location) (esicService.ProtocolAllocator, error) {
	switch cfg.ESIC.ProtocolStrategy {
	case "redis":
		if deps.redis == nil {
			return nil, errors.New("redis protocol strategy requires a redis connection")
		}
		return protocol.NewSequence(deps.redis.Client, cfg.ESIC.ProtocolPrefix, loc), nil
	default:
		return protocol.NewRandom(cfg.ESIC.ProtocolPrefix), nil
	}
}

func buildPublicLimit(cfg config.Server, deps *infra, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.RateLimit.PublicLimit == 0 {
		return nil
	}
	var store ratelimit.Store = ratelimit.NewInMemory()
	if deps.redis != nil {
		store = ratelimit.NewRedis(deps.redis.Client)
	}
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit.PublicLimit, cfg.RateLimit.Window,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimitMetrics.New()),
	)
	return limiter.PerIP
}

func buildProducer(ctx context.Context, cfg config.Server, log *slog.Logger) (outbox.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, audit events are relayed to the log")
		return outbox.NewLogProducer(log), func() {}, nil
	}
	producer, err := outbox.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		return nil, nil, err
	}
	if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
		producer.Close()
		return nil, nil, err
	}
	return producer, producer.Close, nil
}

// issueToken prints a signed access token for local development.
func issueToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	role := fs.String("role", string(domain.RoleOperator), "actor role")
	tenant := fs.Int64("tenant", 1, "tenant id (0 for superadmin)")
	user := fs.Int64("user", 1, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	parsed, err := domain.ParseRole(*role)
	if err != nil {
		return err
	}
	jwt := identity.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	token, err := jwt.GenerateAccessToken(domain.Actor{
		ID:       domain.UserID(*user),
		Role:     parsed,
		TenantID: domain.TenantID(*tenant),
	}, cfg.JWT.TTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

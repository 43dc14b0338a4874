package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"polizaexpress/internal/cases"
	casesstore "polizaexpress/internal/cases/store"
	"polizaexpress/internal/decision"
	"polizaexpress/internal/decision/adapters"
	decisionmetrics "polizaexpress/internal/decision/metrics"
	decisionstore "polizaexpress/internal/decision/store"
	"polizaexpress/internal/evidence/documents"
	"polizaexpress/internal/evidence/financial"
	"polizaexpress/internal/evidence/registry"
	registrymetrics "polizaexpress/internal/evidence/registry/metrics"
	registrystore "polizaexpress/internal/evidence/registry/store"
	"polizaexpress/internal/platform/config"
	"polizaexpress/internal/platform/httpserver"
	"polizaexpress/internal/platform/kafka"
	"polizaexpress/internal/platform/logger"
	"polizaexpress/internal/platform/metrics"
	"polizaexpress/internal/platform/postgres"
	"polizaexpress/internal/platform/redis"
	"polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/audit/publisher"
	auditkafka "polizaexpress/pkg/platform/audit/store/kafka"
	auditmemory "polizaexpress/pkg/platform/audit/store/memory"
	auditpostgres "polizaexpress/pkg/platform/audit/store/postgres"
	"polizaexpress/pkg/platform/circuit"
)

const shutdownTimeout = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// infra holds the optional backing services. Nil members are not configured.
type infra struct {
	db    *sql.DB
	pool  *pgxpool.Pool
	redis *redis.Client
	kafka *kgo.Client
}

func (i *infra) close() {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.pool != nil {
		i.pool.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	i := &infra{}
	var err error
	if cfg.Postgres.URL != "" {
		if i.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
			return nil, err
		}
		if err = postgres.Migrate(ctx, i.db); err != nil {
			i.close()
			return nil, err
		}
		if i.pool, err = postgres.OpenPool(ctx, cfg.Postgres); err != nil {
			i.close()
			return nil, err
		}
		log.Info("postgres connected")
	}
	if i.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		i.close()
		return nil, err
	}
	if i.redis != nil {
		log.Info("redis connected")
	}
	if i.kafka, err = kafka.New(ctx, cfg.Kafka, log); err != nil {
		i.close()
		return nil, err
	}
	return i, nil
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	backing, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backing.close()

	auditPublisher := newAuditPublisher(cfg, backing, log)
	defer auditPublisher.Close()

	decisionSvc := newDecisionService(cfg, backing, auditPublisher, log)

	caseSvc := cases.NewService(casesstore.NewInMemoryStore(), decisionSvc,
		cases.WithAuditor(auditPublisher),
		cases.WithLogger(log),
		cases.WithTTL(cfg.Cases.TTL),
		cases.WithMaxUploadBytes(cfg.Cases.MaxUploadBytes),
	)
	router := newRouter(cfg, log, metrics.New(), decisionSvc, caseSvc)

	log.Info("starting poliza-express",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"dev_providers", cfg.DevProviders(),
		"parallel_lookups", cfg.Decision.ParallelLookups,
	)
	// The sweeper stops before the deferred publisher Close runs.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := caseSvc.StartCleanup(gctx, cfg.Cases.SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, router), log, shutdownTimeout)
	})
	return g.Wait()
}

// newAuditPublisher persists to Postgres when configured and forwards to the
// Kafka audit topic when brokers are set.
func newAuditPublisher(cfg config.Server, backing *infra, log *slog.Logger) *publisher.Publisher {
	var store audit.Store = auditmemory.NewInMemoryStore()
	if backing.db != nil {
		store = auditpostgres.New(backing.db)
	}
	opts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
		publisher.WithAsyncBuffer(cfg.Decision.AuditBuffer),
	}
	if backing.kafka != nil {
		opts = append(opts, publisher.WithForwarder(auditkafka.New(backing.kafka, cfg.Kafka.AuditTopic)))
	}
	return publisher.NewPublisher(store, opts...)
}

func newDecisionService(cfg config.Server, backing *infra, auditor *publisher.Publisher, log *slog.Logger) *decision.Service {
	var (
		vitalClient registry.VitalStatusClient
		extractor   documents.Extractor
	)
	if cfg.DevProviders() {
		log.Warn("external providers not configured; using static development providers")
		vitalClient = registry.StaticClient{}
		extractor = documents.StaticExtractor{}
	} else {
		vitalClient = registry.NewHTTPClient(cfg.Providers.RegistryURL, cfg.Providers.RegistryAPIKey, cfg.Providers.Timeout)
		extractor = documents.NewVisionClient(cfg.Providers.VisionURL, cfg.Providers.VisionAPIKey, cfg.Providers.Timeout)
	}

	registrySvc := registry.NewService(vitalClient,
		registry.WithCache(newVitalCache(cfg, backing), cfg.Providers.RegistryCacheTTL),
		registry.WithBreaker(circuit.New(registry.ProviderID, circuit.WithFailureThreshold(cfg.Providers.BreakerThreshold))),
		registry.WithMetrics(registrymetrics.New()),
		registry.WithLogger(log),
	)

	var financialStore financial.Store = financial.NewInMemoryStore(financial.DevSeed...)
	if backing.pool != nil {
		financialStore = financial.NewPostgresStore(backing.pool)
	}

	var verdicts decision.Store = decisionstore.NewInMemoryStore()
	if backing.db != nil {
		verdicts = decisionstore.NewPostgres(backing.db)
	}

	opts := []decision.Option{
		decision.WithAuditor(auditor),
		decision.WithStore(verdicts),
		decision.WithMetrics(decisionmetrics.New()),
		decision.WithLogger(log),
		decision.WithTracer(otel.Tracer("polizaexpress/decision")),
		decision.WithEvidenceTimeout(cfg.Decision.EvidenceTimeout),
	}
	if cfg.Decision.ParallelLookups {
		opts = append(opts, decision.WithParallelLookups())
	}
	return decision.NewService(
		adapters.NewDocumentAdapter(extractor),
		adapters.NewRegistryAdapter(registrySvc),
		adapters.NewFinancialAdapter(financial.NewService(financialStore)),
		opts...,
	)
}

// newVitalCache keeps records for the freshness TTL plus the stale window so
// the registry can fall back while its circuit is open.
func newVitalCache(cfg config.Server, backing *infra) registry.Cache {
	retention := cfg.Providers.RegistryCacheTTL + registry.DefaultStaleWindow
	switch {
	case backing.redis != nil:
		return registrystore.NewRedisCache(backing.redis.Client, retention)
	case backing.db != nil:
		return registrystore.NewPostgresCache(backing.db, retention)
	default:
		return registrystore.NewInMemoryCache(retention)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"polizaexpress/internal/platform/config"
	"polizaexpress/internal/platform/kafka"
	"polizaexpress/internal/platform/logger"
	"polizaexpress/internal/platform/postgres"
	audit "polizaexpress/pkg/platform/audit"
	"polizaexpress/pkg/platform/audit/consumer"
	auditpostgres "polizaexpress/pkg/platform/audit/store/postgres"
)

// main runs the audit archive: it consumes the audit topic and copies events
// into the archive database.
func main() {
	cfg, err := config.FromEnv()
	if err == nil {
		err = cfg.ValidateAuditSink()
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && ctx.Err() == nil {
		log.Error("audit sink stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	db, err := postgres.Open(ctx, config.PostgresConfig{URL: cfg.AuditSink.ArchiveURL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	client, err := kafka.NewConsumer(ctx, cfg.Kafka, cfg.AuditSink.ConsumerGroup, log)
	if err != nil {
		return err
	}
	defer client.Close()

	archive := auditpostgres.New(db)
	router := consumer.NewRouter(log, nil)
	router.Register(audit.CategoryCompliance, consumer.NewComplianceHandler(archive, log))
	router.Register(audit.CategoryOperations, consumer.NewOpsHandler(archive, log))

	log.Info("audit sink running", "topic", cfg.Kafka.AuditTopic, "group", cfg.AuditSink.ConsumerGroup)
	return consumer.New(client, router, log).Run(ctx)
}

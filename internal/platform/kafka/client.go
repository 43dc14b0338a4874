// Package kafka builds the franz-go client for the audit stream.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"polizaexpress/internal/platform/config"
	auditkafka "polizaexpress/pkg/platform/audit/store/kafka"
)

// New creates a producer client and makes sure the audit topic exists.
// Returns nil if no brokers are configured (stream disabled).
func New(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	if err := auditkafka.EnsureTopic(ctx, client, cfg.AuditTopic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		client.Close()
		return nil, err
	}

	if logger != nil {
		logger.InfoContext(ctx, "kafka audit stream enabled",
			"brokers", cfg.Brokers,
			"topic", cfg.AuditTopic,
		)
	}
	return client, nil
}

// NewConsumer creates a consumer group member on the audit topic. Offsets
// are committed by the caller.
func NewConsumer(ctx context.Context, cfg config.KafkaConfig, group string, logger *slog.Logger) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(cfg.AuditTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "kafka audit consumer joined",
			"topic", cfg.AuditTopic,
			"group", group,
		)
	}
	return client, nil
}

package consumer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	auditkafka "polizaexpress/pkg/platform/audit/store/kafka"
)

// Consumer polls the audit topic and hands every record to a Handler. The
// client must be a consumer group member with auto-commit disabled; offsets
// are committed only after a whole batch was handled.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger
}

func New(client *kgo.Client, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled or a handler fails. On handler failure
// the batch is left uncommitted and the error returned.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if !errors.Is(err, context.Canceled) {
				c.logger.ErrorContext(ctx, "audit fetch error",
					"topic", topic,
					"partition", partition,
					"error", err,
				)
			}
		})

		var handleErr error
		fetches.EachRecord(func(r *kgo.Record) {
			if handleErr != nil {
				return
			}
			handleErr = c.handle(ctx, r)
		})
		if handleErr != nil {
			return handleErr
		}

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			c.logger.WarnContext(ctx, "audit offset commit failed", "error", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, r *kgo.Record) error {
	event, err := auditkafka.Decode(r.Value)
	if err != nil {
		// A record that cannot be decoded will never succeed; skip it.
		c.logger.ErrorContext(ctx, "undecodable audit record",
			"partition", r.Partition,
			"offset", r.Offset,
			"error", err,
		)
		return nil
	}
	if err := c.handler.Handle(ctx, event); err != nil {
		c.logger.ErrorContext(ctx, "audit record handling failed",
			"partition", r.Partition,
			"offset", r.Offset,
			"action", event.Action,
			"error", err,
		)
		return err
	}
	return nil
}

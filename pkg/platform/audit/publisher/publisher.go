// Package publisher emits audit events to a queryable store and forwards
// them to additional sinks such as a Kafka topic.
//
// Compliance events are always written synchronously and fail closed: if the
// store rejects the event, Emit returns the error and the calling operation
// must fail. Operations events go through an optional async buffer.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
)

// ErrBufferFull is returned when the async buffer cannot accept an event.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher emits audit events.
type Publisher struct {
	store      audit.Store
	forwarders []audit.Appender
	logger     *slog.Logger
	metrics    *Metrics

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery of operations events through
// a buffer of the given size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

// WithForwarder adds a sink that receives every event after it is stored.
// Forwarding failures are logged, never returned.
func WithForwarder(a audit.Appender) Option {
	return func(p *Publisher) {
		if a != nil {
			p.forwarders = append(p.forwarders, a)
		}
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher creates a publisher backed by store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. The timestamp and category are filled in when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil || event.Category == audit.CategoryCompliance {
		return p.write(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.metrics.IncDropped()
	return ErrBufferFull
}

// List returns the stored events for a case in emission order.
func (p *Publisher) List(ctx context.Context, caseID id.CaseID) ([]audit.Event, error) {
	return p.store.ListByCase(ctx, caseID)
}

// Close drains the async buffer. It is safe to call more than once.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// The request context is gone by now; buffered events are written
		// under a fresh one.
		_ = p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	start := time.Now()
	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"case_id", event.CaseID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	p.metrics.ObservePersistDuration(time.Since(start))
	p.metrics.IncEmitted(event.Category)

	for _, f := range p.forwarders {
		if err := f.Append(ctx, event); err != nil {
			p.metrics.IncForwardFailures()
			if p.logger != nil {
				p.logger.WarnContext(ctx, "audit forward failed",
					"action", event.Action,
					"case_id", event.CaseID,
					"error", err,
				)
			}
		}
	}
	return nil
}

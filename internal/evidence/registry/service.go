package registry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"polizaexpress/internal/evidence/providers"
	"polizaexpress/internal/evidence/registry/metrics"
	"polizaexpress/internal/evidence/registry/models"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/circuit"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/requestcontext"
)

// DefaultStaleWindow is how long past its TTL a cached record may still be
// served while the registry circuit is open.
const DefaultStaleWindow = 24 * time.Hour

// Cache stores registry records. FindVital returns sentinel.ErrNotFound on a
// miss and may return records older than the service TTL.
type Cache interface {
	FindVital(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error)
	SaveVital(ctx context.Context, record *models.VitalRecord) error
}

// Service coordinates registry lookups with caching and a circuit breaker.
// Fresh cache entries short-circuit the upstream call; stale ones are the
// fallback while the circuit is open.
type Service struct {
	client  VitalStatusClient
	cache   Cache
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithCache enables caching. Records younger than ttl are served without
// calling the registry.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(client VitalStatusClient, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupVitalStatus returns the registry record for identityNumber.
func (s *Service) LookupVitalStatus(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	cached := s.findCached(ctx, identityNumber)
	if cached != nil && s.fresh(ctx, cached) {
		s.metrics.RecordCacheHit()
		return cached, nil
	}
	if s.cache != nil {
		s.metrics.RecordCacheMiss()
	}

	start := time.Now()
	record, err := s.client.Lookup(ctx, identityNumber)
	if err != nil {
		s.metrics.ObserveLookup(string(providers.GetCategory(err)), time.Since(start))
		return s.onFailure(ctx, cached, err)
	}
	s.metrics.ObserveLookup("ok", time.Since(start))
	s.onSuccess(ctx)

	if s.cache != nil {
		if err := s.cache.SaveVital(ctx, record); err != nil {
			s.warn(ctx, "registry cache write failed", "error", err)
		}
	}
	return record, nil
}

func (s *Service) findCached(ctx context.Context, identityNumber id.IdentityNumber) *models.VitalRecord {
	if s.cache == nil {
		return nil
	}
	record, err := s.cache.FindVital(ctx, identityNumber)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.warn(ctx, "registry cache read failed", "error", err)
		}
		return nil
	}
	return record
}

func (s *Service) fresh(ctx context.Context, record *models.VitalRecord) bool {
	return requestcontext.Now(ctx).Sub(record.CheckedAt) < s.ttl
}

func (s *Service) onSuccess(ctx context.Context) {
	if s.breaker == nil {
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.metrics.SetCircuitOpen(false)
		s.info(ctx, "registry circuit closed")
	}
}

// onFailure counts transient failures against the circuit. Not-found and
// bad-data answers are the registry working as intended.
func (s *Service) onFailure(ctx context.Context, cached *models.VitalRecord, err error) (*models.VitalRecord, error) {
	if s.breaker == nil || !providers.IsRetryable(err) {
		return nil, err
	}
	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.metrics.SetCircuitOpen(true)
		s.warn(ctx, "registry circuit opened", "error", err)
	}
	if useFallback && cached != nil {
		s.metrics.RecordFallback()
		s.warn(ctx, "serving stale vital status while registry is unavailable",
			"checked_at", cached.CheckedAt,
		)
		return cached, nil
	}
	return nil, err
}

func (s *Service) info(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, msg, withRequest(ctx, args)...)
}

func (s *Service) warn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, withRequest(ctx, args)...)
}

// withRequest appends the request and case IDs carried by ctx.
func withRequest(ctx context.Context, args []any) []any {
	args = append(args, "request_id", requestcontext.RequestID(ctx))
	if caseID := requestcontext.CaseID(ctx); !caseID.IsNil() {
		args = append(args, "case_id", caseID)
	}
	return args
}

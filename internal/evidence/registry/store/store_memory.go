package store

import (
	"context"
	"sync"
	"time"

	"polizaexpress/internal/evidence/registry/models"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/requestcontext"
)

type cachedVital struct {
	record   models.VitalRecord
	storedAt time.Time
}

// InMemoryCache keeps registry records in process for the retention window.
type InMemoryCache struct {
	mu        sync.RWMutex
	records   map[string]cachedVital
	retention time.Duration
}

// NewInMemoryCache creates a new in-memory cache with the specified retention.
func NewInMemoryCache(retention time.Duration) *InMemoryCache {
	return &InMemoryCache{
		records:   make(map[string]cachedVital),
		retention: retention,
	}
}

// SaveVital stores a record keyed by identity number.
// If record is nil, the operation is a no-op and returns nil.
func (c *InMemoryCache) SaveVital(ctx context.Context, record *models.VitalRecord) error {
	if record == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.IdentityNumber] = cachedVital{record: *record, storedAt: requestcontext.Now(ctx)}
	return nil
}

// FindVital returns the cached record, or sentinel.ErrNotFound when it is
// absent or older than the retention window.
func (c *InMemoryCache) FindVital(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.records[identityNumber.String()]; ok {
		if requestcontext.Now(ctx).Sub(cached.storedAt) < c.retention {
			record := cached.record
			return &record, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

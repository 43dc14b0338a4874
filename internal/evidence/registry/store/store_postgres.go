package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polizaexpress/internal/evidence/registry/models"
	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
	"polizaexpress/pkg/requestcontext"
)

// PostgresCache persists registry records in PostgreSQL. Used when Redis is
// not configured but a database is.
type PostgresCache struct {
	db        *sql.DB
	retention time.Duration
}

// NewPostgresCache constructs a PostgreSQL-backed registry cache.
func NewPostgresCache(db *sql.DB, retention time.Duration) *PostgresCache {
	return &PostgresCache{db: db, retention: retention}
}

func (c *PostgresCache) FindVital(ctx context.Context, identityNumber id.IdentityNumber) (*models.VitalRecord, error) {
	cutoff := requestcontext.Now(ctx).Add(-c.retention)
	query := `
		SELECT identity_number, status, source, checked_at
		FROM registry_cache
		WHERE identity_number = $1 AND stored_at > $2
	`
	var record models.VitalRecord
	err := c.db.QueryRowContext(ctx, query, identityNumber.String(), cutoff).Scan(
		&record.IdentityNumber,
		&record.Status,
		&record.Source,
		&record.CheckedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vital cache: %w", err)
	}
	return &record, nil
}

func (c *PostgresCache) SaveVital(ctx context.Context, record *models.VitalRecord) error {
	if record == nil {
		return fmt.Errorf("vital record is required")
	}
	query := `
		INSERT INTO registry_cache (identity_number, status, source, checked_at, stored_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity_number) DO UPDATE SET
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			checked_at = EXCLUDED.checked_at,
			stored_at = EXCLUDED.stored_at
	`
	_, err := c.db.ExecContext(ctx, query,
		record.IdentityNumber,
		record.Status,
		record.Source,
		record.CheckedAt,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("save vital cache: %w", err)
	}
	return nil
}

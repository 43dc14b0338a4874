package financial

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "polizaexpress/pkg/domain"
	"polizaexpress/pkg/platform/sentinel"
)

const (
	selectProductSQL = `
SELECT identity_number, product_type, credit_plan, balance, disbursement_date, disbursement_amount, credit_term_end
FROM financial_products
WHERE identity_number = $1`

	upsertProductSQL = `
INSERT INTO financial_products (identity_number, product_type, credit_plan, balance, disbursement_date, disbursement_amount, credit_term_end, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (identity_number) DO UPDATE SET
	product_type = EXCLUDED.product_type,
	credit_plan = EXCLUDED.credit_plan,
	balance = EXCLUDED.balance,
	disbursement_date = EXCLUDED.disbursement_date,
	disbursement_amount = EXCLUDED.disbursement_amount,
	credit_term_end = EXCLUDED.credit_term_end,
	updated_at = now()`
)

// PostgresStore reads financial products through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL-backed financial store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, identityNumber id.IdentityNumber) (*Record, error) {
	var r Record
	err := s.pool.QueryRow(ctx, selectProductSQL, identityNumber.String()).Scan(
		&r.IdentityNumber,
		&r.ProductType,
		&r.CreditPlan,
		&r.Balance,
		&r.DisbursementDate,
		&r.DisbursementAmount,
		&r.CreditTermEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find financial product: %w", err)
	}
	return &r, nil
}

// Upsert inserts or replaces the product of a person.
func (s *PostgresStore) Upsert(ctx context.Context, record Record) error {
	_, err := s.pool.Exec(ctx, upsertProductSQL,
		record.IdentityNumber,
		record.ProductType,
		record.CreditPlan,
		record.Balance,
		record.DisbursementDate,
		record.DisbursementAmount,
		record.CreditTermEnd,
	)
	if err != nil {
		return fmt.Errorf("upsert financial product: %w", err)
	}
	return nil
}

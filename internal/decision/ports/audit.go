package ports

import (
	"context"

	"polizaexpress/pkg/platform/audit"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_mock.go -package=mocks

// AuditPort defines the interface for emitting audit events.
// This matches the audit publisher but is defined here
// to maintain hexagonal boundaries.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}

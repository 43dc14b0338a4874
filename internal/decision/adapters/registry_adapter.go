package adapters

import (
	"context"

	"polizaexpress/internal/decision/ports"
	"polizaexpress/internal/evidence/registry"
	id "polizaexpress/pkg/domain"
)

// RegistryAdapter is an in-process adapter that implements ports.RegistryPort
// by directly calling the registry service. This maintains the hexagonal
// architecture boundaries while keeping everything in a single process.
type RegistryAdapter struct {
	registry *registry.Service
}

// NewRegistryAdapter creates a new in-process registry adapter
func NewRegistryAdapter(registry *registry.Service) ports.RegistryPort {
	return &RegistryAdapter{registry: registry}
}

// LookupVitalStatus retrieves the vital status by identity number
func (a *RegistryAdapter) LookupVitalStatus(ctx context.Context, identityNumber id.IdentityNumber) (*ports.VitalRecord, error) {
	record, err := a.registry.LookupVitalStatus(ctx, identityNumber)
	if err != nil {
		return nil, err
	}
	return &ports.VitalRecord{
		IdentityNumber: record.IdentityNumber,
		Status:         record.Status,
		Source:         record.Source,
		CheckedAt:      record.CheckedAt,
	}, nil
}

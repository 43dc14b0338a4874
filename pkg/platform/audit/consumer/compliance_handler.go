package consumer

import (
	"context"
	"fmt"
	"log/slog"

	audit "polizaexpress/pkg/platform/audit"
)

// ComplianceHandler copies compliance events into the archive. A failed
// write is returned so the offset is not committed and the event is read
// again.
type ComplianceHandler struct {
	store  audit.Appender
	logger *slog.Logger
}

// NewComplianceHandler creates a compliance event handler.
func NewComplianceHandler(store audit.Appender, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ComplianceHandler) Handle(ctx context.Context, event audit.Event) error {
	if event.CaseID.IsNil() {
		h.logger.WarnContext(ctx, "compliance event without case id",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
	if err := h.store.Append(ctx, event); err != nil {
		return fmt.Errorf("archive compliance event %s: %w", event.Action, err)
	}
	h.logger.DebugContext(ctx, "compliance event archived",
		"case_id", event.CaseID,
		"action", event.Action,
		"step", event.Step,
	)
	return nil
}

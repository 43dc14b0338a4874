package consumer

import (
	"context"
	"log/slog"

	audit "polizaexpress/pkg/platform/audit"
)

// OpsHandler archives operational events on a best-effort basis. Failures
// are logged and the event is committed anyway.
type OpsHandler struct {
	store  audit.Appender
	logger *slog.Logger
}

// NewOpsHandler creates an ops event handler. A nil store only logs.
func NewOpsHandler(store audit.Appender, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		store:  store,
		logger: logger,
	}
}

func (h *OpsHandler) Handle(ctx context.Context, event audit.Event) error {
	if h.store == nil {
		h.logger.DebugContext(ctx, "ops event", "action", event.Action, "case_id", event.CaseID)
		return nil
	}
	if err := h.store.Append(ctx, event); err != nil {
		h.logger.DebugContext(ctx, "failed to archive ops event",
			"action", event.Action,
			"case_id", event.CaseID,
			"error", err,
		)
	}
	return nil
}

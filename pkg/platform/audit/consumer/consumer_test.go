package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "polizaexpress/pkg/domain"
	audit "polizaexpress/pkg/platform/audit"
	auditmemory "polizaexpress/pkg/platform/audit/store/memory"
)

type failingAppender struct{}

func (failingAppender) Append(context.Context, audit.Event) error {
	return errors.New("archive unavailable")
}

type countingHandler struct{ n int }

func (h *countingHandler) Handle(context.Context, audit.Event) error {
	h.n++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	compliance := &countingHandler{}
	ops := &countingHandler{}
	router := NewRouter(discardLogger(), nil)
	router.Register(audit.CategoryCompliance, compliance)
	router.Register(audit.CategoryOperations, ops)

	require.NoError(t, router.Handle(ctx, audit.Event{Category: audit.CategoryCompliance, Action: "eligibility_evaluated"}))
	require.NoError(t, router.Handle(ctx, audit.Event{Action: string(audit.EventCaseCreated)}))
	require.NoError(t, router.Handle(ctx, audit.Event{Action: string(audit.EventVitalStatusChecked)}))

	assert.Equal(t, 2, compliance.n, "category falls back to the action's category")
	assert.Equal(t, 1, ops.n)

	t.Run("unknown category is skipped", func(t *testing.T) {
		r := NewRouter(discardLogger(), nil)
		assert.NoError(t, r.Handle(ctx, audit.Event{Category: "security"}))
	})

	t.Run("fallback handler", func(t *testing.T) {
		fallback := &countingHandler{}
		r := NewRouter(discardLogger(), fallback)
		require.NoError(t, r.Handle(ctx, audit.Event{Category: "security"}))
		assert.Equal(t, 1, fallback.n)
	})
}

func TestComplianceHandler(t *testing.T) {
	ctx := context.Background()
	caseID := id.NewCaseID()

	t.Run("archives the event", func(t *testing.T) {
		store := auditmemory.NewInMemoryStore()
		h := NewComplianceHandler(store, discardLogger())
		require.NoError(t, h.Handle(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventEligibilityDecided), Step: 5}))

		events, err := store.ListByCase(ctx, caseID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 5, events[0].Step)
	})

	t.Run("write failure is returned", func(t *testing.T) {
		h := NewComplianceHandler(failingAppender{}, discardLogger())
		err := h.Handle(ctx, audit.Event{CaseID: caseID, Action: string(audit.EventEligibilityDecided)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "eligibility_evaluated")
	})
}

func TestOpsHandlerIsBestEffort(t *testing.T) {
	ctx := context.Background()
	event := audit.Event{CaseID: id.NewCaseID(), Action: string(audit.EventCaseExpired)}

	assert.NoError(t, NewOpsHandler(failingAppender{}, discardLogger()).Handle(ctx, event))
	assert.NoError(t, NewOpsHandler(nil, discardLogger()).Handle(ctx, event))
}

package command

import (
	"context"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

// directUnit runs fn against the configured stores without a transaction. It
// is used when no UnitOfWork is wired, so a failure part way through leaves
// earlier writes in place.
type directUnit struct {
	stores types.TxStores
}

func (u directUnit) RunInTx(ctx context.Context, fn func(ctx context.Context, stores types.TxStores) error) error {
	return fn(ctx, u.stores)
}

// unitOrDirect reports whether the returned unit rolls back on failure.
func unitOrDirect(unit types.UnitOfWork, stores types.TxStores) (types.UnitOfWork, bool) {
	if unit != nil {
		return unit, true
	}
	return directUnit{stores: stores}, false
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// logAudit appends the entry and fires the audit hook on success.
func logAudit(ctx context.Context, sink types.AuditSink, hooks types.Hooks, entry types.AuditEntry) error {
	if sink == nil {
		return nil
	}
	if err := sink.Log(ctx, entry); err != nil {
		return err
	}
	if hooks.AfterAudit != nil {
		hooks.AfterAudit(ctx, entry)
	}
	return nil
}

func emitReviewHook(ctx context.Context, hooks types.Hooks, event types.ReviewEvent) {
	if hooks.AfterReview == nil {
		return
	}
	hooks.AfterReview(ctx, event)
}

func emitBookkeepingFailure(ctx context.Context, hooks types.Hooks, failure types.BookkeepingFailure) {
	if hooks.AfterBookkeepingFailure == nil {
		return
	}
	hooks.AfterBookkeepingFailure(ctx, failure)
}

func statusSnapshot(status types.ResetStatus) map[string]any {
	return map[string]any{"status": string(status)}
}

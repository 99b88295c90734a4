// Package tier holds the escalating decision tiers run by the dispatcher
// after the coordinator manager. Every tier returns a valid action; remote
// failures are absorbed here and never reach the caller.
package tier

import (
	"context"

	"tacticore/internal/domain/decision"
)

type Tier interface {
	Stage() decision.Stage
	ShouldHandle(s decision.Snapshot) bool
	Decide(ctx context.Context, s decision.Snapshot) decision.Action
}

func mustAction(kind decision.ActionKind, reason string, confidence float64, params map[string]string) decision.Action {
	a, err := decision.NewAction(kind, reason, confidence, params)
	if err != nil {
		return decision.NoOp("invalid local action: "+err.Error(), 0.1)
	}
	return a
}

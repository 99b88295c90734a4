package coordinator

import "tacticore/internal/domain/decision"

// Coordinator proposes at most one action inside a narrow tactical domain.
// ShouldActivate must not change any state; Decide may.
type Coordinator interface {
	Name() string
	Priority() decision.Priority
	ShouldActivate(s decision.Snapshot) bool
	Decide(s decision.Snapshot) decision.Action
}

type Base struct {
	name     string
	priority decision.Priority
}

func NewBase(name string, priority decision.Priority) Base {
	return Base{name: name, priority: priority}
}

func (b Base) Name() string { return b.name }

func (b Base) Priority() decision.Priority { return b.priority }

func (b Base) propose(kind decision.ActionKind, reason string, confidence float64, params map[string]string) decision.Action {
	a, err := decision.NewAction(kind, b.name+": "+reason, confidence, params)
	if err != nil {
		return decision.NoOp(b.name+": rejected proposal: "+err.Error(), 0.1)
	}
	return a
}

func (b Base) idle(reason string, confidence float64) decision.Action {
	return decision.NoOp(b.name+": "+reason, confidence)
}

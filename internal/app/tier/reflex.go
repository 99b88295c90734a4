package tier

import (
	"context"
	"fmt"

	"tacticore/internal/domain/decision"
)

// Reflex reacts to immediate danger without any I/O.
type Reflex struct {
	tuning decision.ReflexTuning
}

func NewReflex(t decision.ReflexTuning) Reflex {
	return Reflex{tuning: t}
}

func (Reflex) Stage() decision.Stage { return decision.StageReflex }

func (r Reflex) ShouldHandle(s decision.Snapshot) bool {
	_, ok := r.react(s)
	return ok
}

func (r Reflex) Decide(_ context.Context, s decision.Snapshot) decision.Action {
	if a, ok := r.react(s); ok {
		return a
	}
	return decision.NoOp("reflex: nothing urgent", 0.1)
}

func (r Reflex) react(s decision.Snapshot) (decision.Action, bool) {
	hp := s.HPRatio()
	underAttack := s.UnderAttack(r.tuning.AttackedRange)

	if hp < r.tuning.HPCritical {
		return remedyAction(s, decision.RemedyHealing, fmt.Sprintf("reflex: critical hp %.0f%%", hp*100), 0.95), true
	}
	for _, status := range r.tuning.DangerStatuses {
		if s.HasStatus(status) {
			return remedyAction(s, decision.RemedyStatus, "reflex: curing "+status, 0.95), true
		}
	}
	if hp < r.tuning.HPLow && underAttack {
		return remedyAction(s, decision.RemedyHealing, fmt.Sprintf("reflex: low hp %.0f%% under attack", hp*100), 0.9), true
	}
	if s.WeightRatio() >= r.tuning.WeightCritical {
		return mustAction(decision.KindCommand, "reflex: overweight, storing items", 0.9, map[string]string{"command": "storage"}), true
	}
	if s.SPRatio() < r.tuning.SPLow && underAttack {
		return remedyAction(s, decision.RemedySP, "reflex: low sp under attack", 0.9), true
	}
	return decision.Action{}, false
}

func remedyAction(s decision.Snapshot, kind decision.RemedyKind, reason string, confidence float64) decision.Action {
	return mustAction(decision.KindItem, reason, confidence, s.RemedyParams(kind))
}

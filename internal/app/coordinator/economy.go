package coordinator

import "tacticore/internal/domain/decision"

const EconomyName = "economy"

type Economy struct {
	Base
	tuning decision.EconomyTuning
}

func NewEconomy(t decision.EconomyTuning) *Economy {
	return &Economy{Base: NewBase(EconomyName, decision.PriorityMedium), tuning: t}
}

func (e *Economy) ShouldActivate(s decision.Snapshot) bool {
	return e.overweight(s) || e.inventoryCrowded(s)
}

func (e *Economy) Decide(s decision.Snapshot) decision.Action {
	if e.overweight(s) {
		return e.propose(decision.KindMove, "overweight, returning to storage", 0.85, map[string]string{"destination": "storage"})
	}
	if e.inventoryCrowded(s) {
		return e.propose(decision.KindMove, "inventory crowded, going to sell items", 0.8, map[string]string{"destination": "merchant"})
	}
	return e.idle("economy check passed", 0.5)
}

func (e *Economy) overweight(s decision.Snapshot) bool {
	return s.WeightRatio() > e.tuning.Overweight
}

func (e *Economy) inventoryCrowded(s decision.Snapshot) bool {
	return e.tuning.MaxItemEntries > 0 && len(s.Inventory) > e.tuning.MaxItemEntries
}

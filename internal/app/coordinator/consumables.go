package coordinator

import "tacticore/internal/domain/decision"

const ConsumablesName = "consumables"

type Consumables struct {
	Base
	tuning decision.ConsumablesTuning
}

func NewConsumables(t decision.ConsumablesTuning) *Consumables {
	return &Consumables{Base: NewBase(ConsumablesName, decision.PriorityHigh), tuning: t}
}

func (c *Consumables) ShouldActivate(s decision.Snapshot) bool {
	if s.HPRatio() < c.tuning.HPWarning {
		if _, ok := s.BestRemedy(decision.RemedyHealing); ok {
			return true
		}
	}
	if s.SPRatio() < c.tuning.SPWarning {
		if _, ok := s.BestRemedy(decision.RemedySP); ok {
			return true
		}
	}
	return false
}

func (c *Consumables) Decide(s decision.Snapshot) decision.Action {
	hp := s.HPRatio()
	if heal, ok := s.BestRemedy(decision.RemedyHealing); ok {
		switch {
		case hp < c.tuning.HPEmergency:
			return c.propose(decision.KindItem, "hp emergency, using "+heal.Name, 0.9, itemParams(heal))
		case hp < c.tuning.HPWarning:
			return c.propose(decision.KindItem, "hp low, using "+heal.Name, 0.7, itemParams(heal))
		}
	}
	if s.SPRatio() < c.tuning.SPWarning {
		if sp, ok := s.BestRemedy(decision.RemedySP); ok {
			return c.propose(decision.KindItem, "sp low, using "+sp.Name, 0.65, itemParams(sp))
		}
	}
	return c.idle("no remedy needed", 0.1)
}

func itemParams(it decision.Item) map[string]string {
	params := map[string]string{"item": it.Name}
	if it.ID != "" {
		params["item_id"] = it.ID
	}
	return params
}

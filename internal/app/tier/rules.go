package tier

import (
	"context"
	"fmt"
	"strings"

	"tacticore/internal/app/coordinator"
	"tacticore/internal/domain/decision"
)

// Rules applies fixed tactical rules when reflexes and coordinators passed.
type Rules struct {
	tuning   decision.RulesTuning
	critical float64
}

func NewRules(t decision.RulesTuning, reflex decision.ReflexTuning) Rules {
	return Rules{tuning: t, critical: reflex.HPCritical}
}

func (Rules) Stage() decision.Stage { return decision.StageRules }

func (r Rules) ShouldHandle(s decision.Snapshot) bool {
	if len(s.Hostiles) > 0 {
		return true
	}
	hp := s.HPRatio()
	return hp > r.critical && hp < r.tuning.HPHeal
}

func (r Rules) Decide(_ context.Context, s decision.Snapshot) decision.Action {
	hp := s.HPRatio()
	if hp < r.tuning.HPHeal {
		if heal, ok := s.BestRemedy(decision.RemedyHealing); ok {
			params := map[string]string{"item": heal.Name}
			if heal.ID != "" {
				params["item_id"] = heal.ID
			}
			return mustAction(decision.KindItem, fmt.Sprintf("rules: hp %.0f%%, using %s", hp*100, heal.Name), 0.75, params)
		}
	}

	if hp >= r.tuning.HPNoAttack {
		if target, ok := coordinator.SelectTarget(s.Hostiles, r.tuning.MaxAttackDistance); ok {
			return r.engage(s, target)
		}
	}

	if n := s.CountHostilesWithin(r.tuning.SafeDistance, true); n >= r.tuning.RetreatCount {
		return mustAction(decision.KindMove, fmt.Sprintf("rules: %d aggressive hostiles nearby, retreating", n), 0.7, map[string]string{
			"direction": "away",
			"distance":  fmt.Sprint(r.tuning.SafeDistance),
		})
	}
	return decision.NoOp("rules: no rule matched", decision.MaxNoOpConfidence)
}

func (r Rules) engage(s decision.Snapshot, target decision.Hostile) decision.Action {
	label := target.Name
	if label == "" {
		label = target.ID
	}
	if s.SPRatio() >= r.tuning.SPSkill && target.Distance <= r.tuning.SkillRange && strings.TrimSpace(s.Character.JobClass) != "" {
		return mustAction(decision.KindSkill, "rules: skill on "+label, 0.8, map[string]string{
			"skill":  "auto",
			"target": target.ID,
		})
	}
	return mustAction(decision.KindAttack, "rules: attacking "+label, 0.8, map[string]string{"target": target.ID})
}

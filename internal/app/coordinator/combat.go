package coordinator

import (
	"strings"

	"tacticore/internal/domain/decision"
)

const CombatName = "combat"

// classSkills maps a job class to its single-target and area skills.
var classSkills = map[string]struct{ single, area string }{
	"swordsman": {single: "Bash", area: "Magnum Break"},
	"knight":    {single: "Bash", area: "Magnum Break"},
	"magician":  {single: "Fire Bolt", area: "Fire Wall"},
	"wizard":    {single: "Fire Bolt", area: "Storm Gust"},
	"archer":    {single: "Double Strafe", area: "Arrow Shower"},
	"hunter":    {single: "Double Strafe", area: "Arrow Shower"},
}

type Combat struct {
	Base
	tuning decision.CombatTuning
}

func NewCombat(t decision.CombatTuning) *Combat {
	return &Combat{Base: NewBase(CombatName, decision.PriorityHigh), tuning: t}
}

func (c *Combat) ShouldActivate(s decision.Snapshot) bool {
	return len(s.Hostiles) > 0 && s.HPRatio() > c.tuning.MinHP
}

func (c *Combat) Decide(s decision.Snapshot) decision.Action {
	target, ok := SelectTarget(s.Hostiles, c.tuning.Range)
	if !ok {
		return c.idle("no valid combat target", 0.5)
	}
	skills, hasSkills := classSkills[strings.ToLower(strings.TrimSpace(s.Character.JobClass))]
	canCast := hasSkills && s.SPRatio() >= c.tuning.SPSkill

	if canCast && s.CountHostilesWithin(c.tuning.AoERadius, false) >= c.tuning.AoEMinCount {
		return c.propose(decision.KindSkill, "multiple targets, using "+skills.area, 0.85, map[string]string{
			"skill":       skills.area,
			"target_area": "self",
			"target":      target.ID,
		})
	}
	if canCast {
		return c.propose(decision.KindSkill, "using "+skills.single+" on "+targetLabel(target), 0.9, map[string]string{
			"skill":  skills.single,
			"target": target.ID,
		})
	}
	return c.propose(decision.KindAttack, "basic attack on "+targetLabel(target), 0.75, map[string]string{
		"target": target.ID,
	})
}

// SelectTarget picks the nearest aggressive hostile within maxDistance, or the
// nearest passive one when none is aggressive. Distance ties keep list order.
func SelectTarget(hostiles []decision.Hostile, maxDistance int) (decision.Hostile, bool) {
	var best decision.Hostile
	found := false
	for _, h := range hostiles {
		if h.Distance > maxDistance {
			continue
		}
		switch {
		case !found:
			best, found = h, true
		case h.Aggressive && !best.Aggressive:
			best = h
		case h.Aggressive == best.Aggressive && h.Distance < best.Distance:
			best = h
		}
	}
	return best, found
}

func targetLabel(h decision.Hostile) string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

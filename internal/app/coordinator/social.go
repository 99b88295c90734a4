package coordinator

import (
	"fmt"

	"tacticore/internal/domain/decision"
)

const SocialName = "social"

// Social keeps awareness of nearby players. Conversations are driven by the
// game client; this coordinator only reports what it is watching.
type Social struct {
	Base
	tuning decision.SocialTuning
}

func NewSocial(t decision.SocialTuning) *Social {
	return &Social{Base: NewBase(SocialName, decision.PriorityLow), tuning: t}
}

func (c *Social) ShouldActivate(s decision.Snapshot) bool {
	if len(s.Friendlies) == 0 {
		return false
	}
	if len(s.Hostiles) > 0 && (s.HPRatio() < c.tuning.MinHPInCombat || len(s.Hostiles) > c.tuning.MaxHostiles) {
		return false
	}
	_, ok := c.closest(s)
	return ok
}

func (c *Social) Decide(s decision.Snapshot) decision.Action {
	p, ok := c.closest(s)
	if !ok {
		return c.idle("no nearby players for social interaction", 0.1)
	}
	return c.idle(fmt.Sprintf("monitoring social interactions with %s (distance: %d cells)", p.Name, p.Distance), 0.3)
}

func (c *Social) closest(s decision.Snapshot) (decision.Friendly, bool) {
	var best decision.Friendly
	found := false
	for _, p := range s.Friendlies {
		if p.Distance > c.tuning.InteractionRange {
			continue
		}
		if !found || p.Distance < best.Distance {
			best, found = p, true
		}
	}
	return best, found
}

package coordinator

import (
	"fmt"
	"strconv"

	"tacticore/internal/domain/decision"
)

const PlanningName = "planning"

type planStep int

const (
	stepEmergencyHeal planStep = iota
	stepRetreat
)

// Planning runs a short multi-step plan when the agent is swarmed while
// weak: heal first, then break away. One step is emitted per Decide and the
// plan is dropped once its last step went out.
type Planning struct {
	Base
	tuning decision.PlanningTuning
	plan   []planStep
	next   int
}

func NewPlanning(t decision.PlanningTuning) *Planning {
	return &Planning{Base: NewBase(PlanningName, decision.PriorityLow), tuning: t}
}

func (c *Planning) ShouldActivate(s decision.Snapshot) bool {
	return c.Active() || c.swarmed(s)
}

// Active reports whether a plan still has steps left.
func (c *Planning) Active() bool { return c.next < len(c.plan) }

func (c *Planning) Decide(s decision.Snapshot) decision.Action {
	if !c.Active() {
		if !c.swarmed(s) {
			return c.idle("no plan active", 0.1)
		}
		c.plan = []planStep{stepEmergencyHeal, stepRetreat}
		c.next = 0
	}
	step, number, total := c.plan[c.next], c.next+1, len(c.plan)
	c.next++
	if c.next >= total {
		c.plan, c.next = nil, 0
	}
	return c.emit(step, number, total, s)
}

func (c *Planning) swarmed(s decision.Snapshot) bool {
	return len(s.Hostiles) >= c.tuning.MinThreats && s.HPRatio() < c.tuning.HPTrigger
}

func (c *Planning) emit(step planStep, number, total int, s decision.Snapshot) decision.Action {
	label := fmt.Sprintf("plan step %d/%d: ", number, total)
	switch step {
	case stepEmergencyHeal:
		return c.propose(decision.KindItem, label+"emergency heal", 0.95, s.RemedyParams(decision.RemedyHealing))
	default:
		return c.propose(decision.KindMove, label+"retreat", 0.9, map[string]string{
			"direction": "away",
			"threats":   strconv.Itoa(len(s.Hostiles)),
		})
	}
}

package coordinator

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"tacticore/internal/domain/decision"
)

const NavigationName = "navigation"

// Navigation watches for repeated identical positions. State is only touched
// in Decide and belongs to a single session.
type Navigation struct {
	Base
	tuning  decision.NavigationTuning
	rng     *rand.Rand
	last    decision.Position
	seen    bool
	repeats int
}

func NewNavigation(t decision.NavigationTuning, rng *rand.Rand) *Navigation {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Navigation{Base: NewBase(NavigationName, decision.PriorityLow), tuning: t, rng: rng}
}

func (n *Navigation) ShouldActivate(s decision.Snapshot) bool {
	p := s.Character.Position
	return p.Map != "" || p.X != 0 || p.Y != 0
}

// Repeats reports how many consecutive identical positions have been counted.
func (n *Navigation) Repeats() int { return n.repeats }

func (n *Navigation) Decide(s decision.Snapshot) decision.Action {
	pos := s.Character.Position
	if n.seen && pos == n.last {
		n.repeats++
	} else {
		n.last, n.seen, n.repeats = pos, true, 1
	}
	if n.repeats < n.tuning.StuckThreshold {
		return n.idle(fmt.Sprintf("position %s:%d,%d seen %d/%d", pos.Map, pos.X, pos.Y, n.repeats, n.tuning.StuckThreshold), 0.1)
	}
	n.repeats = 0

	if wing, ok := bestEscapeItem(s); ok {
		return n.propose(decision.KindItem, "stuck, teleporting with "+wing.Name, 0.8, itemParams(wing))
	}
	dx, dy := n.displacement()
	return n.propose(decision.KindMove, "stuck, random displacement", 0.6, map[string]string{
		"x":  strconv.Itoa(pos.X + dx),
		"y":  strconv.Itoa(pos.Y + dy),
		"dx": strconv.Itoa(dx),
		"dy": strconv.Itoa(dy),
	})
}

func (n *Navigation) displacement() (int, int) {
	step := n.tuning.MaxStep
	dx := n.rng.IntN(2*step+1) - step
	dy := n.rng.IntN(2*step+1) - step
	if dx == 0 && dy == 0 {
		dx = step
	}
	return dx, dy
}

func bestEscapeItem(s decision.Snapshot) (decision.Item, bool) {
	return s.BestRemedy(decision.RemedyEscape)
}

package coordinator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tacticore/internal/domain/decision"
)

var (
	ErrEmptyRegistry        = errors.New("coordinator registry is empty")
	ErrDuplicateCoordinator = errors.New("duplicate coordinator name")
	ErrUnnamedCoordinator   = errors.New("coordinator without name")
)

const noRecommendationReason = "coordinators: no recommendations"

// Manager polls a fixed, ordered set of coordinators and arbitrates between
// their proposals: most urgent priority, then highest confidence, then
// earliest registration.
type Manager struct {
	coordinators []Coordinator
}

func NewManager(coordinators ...Coordinator) (*Manager, error) {
	if len(coordinators) == 0 {
		return nil, ErrEmptyRegistry
	}
	seen := make(map[string]struct{}, len(coordinators))
	for _, c := range coordinators {
		if c == nil || strings.TrimSpace(c.Name()) == "" {
			return nil, ErrUnnamedCoordinator
		}
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCoordinator, c.Name())
		}
		seen[c.Name()] = struct{}{}
	}
	out := make([]Coordinator, len(coordinators))
	copy(out, coordinators)
	return &Manager{coordinators: out}, nil
}

func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.coordinators))
	for _, c := range m.coordinators {
		names = append(names, c.Name())
	}
	return names
}

type candidate struct {
	index       int
	coordinator Coordinator
	action      decision.Action
}

func (c candidate) beats(other candidate) bool {
	if c.coordinator.Priority() != other.coordinator.Priority() {
		return c.coordinator.Priority().MoreUrgentThan(other.coordinator.Priority())
	}
	if c.action.Confidence() != other.action.Confidence() {
		return c.action.Confidence() > other.action.Confidence()
	}
	return c.index < other.index
}

// Decide returns the winning proposal. When nothing actionable was proposed it
// returns the best advisory no-op from an activated coordinator, or the
// canonical no-op when none activated.
func (m *Manager) Decide(s decision.Snapshot) decision.Action {
	var best, advisory *candidate
	for i, c := range m.coordinators {
		if !c.ShouldActivate(s) {
			continue
		}
		cand := candidate{index: i, coordinator: c, action: c.Decide(s)}
		if cand.action.IsNone() {
			if advisory == nil || cand.beats(*advisory) {
				advisory = &cand
			}
			continue
		}
		log.Debug().
			Str("coordinator", c.Name()).
			Str("priority", c.Priority().String()).
			Str("kind", string(cand.action.Kind())).
			Float64("confidence", cand.action.Confidence()).
			Msg("coordinator recommendation")
		if best == nil || cand.beats(*best) {
			best = &cand
		}
	}
	if best != nil {
		log.Debug().Str("coordinator", best.coordinator.Name()).Msg("coordinator selected")
		return best.action
	}
	if advisory != nil {
		return advisory.action
	}
	return decision.NoOp(noRecommendationReason, decision.MaxNoOpConfidence)
}

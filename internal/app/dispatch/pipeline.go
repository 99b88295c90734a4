package dispatch

import (
	"context"
	"math/rand/v2"
	"time"

	"tacticore/internal/app/coordinator"
	"tacticore/internal/app/ports"
	"tacticore/internal/app/tier"
	"tacticore/internal/domain/decision"
)

// Arbiter resolves coordinator proposals into one action.
type Arbiter interface {
	Decide(s decision.Snapshot) decision.Action
}

// Pipeline is the full stage set owned by one session.
type Pipeline struct {
	Reflex       tier.Tier
	Coordinators Arbiter
	Rules        tier.Tier
	Deliberative tier.Tier
	Strategic    tier.Tier
}

type PipelineFactory func() (*Pipeline, error)

// Remotes are shared by every pipeline a factory builds. Nil clients turn the
// matching tier off.
type Remotes struct {
	Prediction        ports.Collaborator
	PredictionTimeout time.Duration
	Reasoning         ports.Collaborator
	ReasoningTimeout  time.Duration
}

// NewPipelineFactory builds fresh per-session coordinators and tiers over
// shared remote clients.
func NewPipelineFactory(t decision.Tuning, remotes Remotes) PipelineFactory {
	return func() (*Pipeline, error) {
		manager, err := coordinator.NewDefaultManager(t, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		if err != nil {
			return nil, err
		}
		p := &Pipeline{
			Reflex:       tier.NewReflex(t.Reflex),
			Coordinators: manager,
			Rules:        tier.NewRules(t.Rules, t.Reflex),
			Deliberative: tier.Deliberative{Client: remotes.Prediction, Timeout: remotes.PredictionTimeout},
		}
		if remotes.Reasoning != nil {
			p.Strategic = tier.NewStrategic(remotes.Reasoning, remotes.ReasoningTimeout, t.Strategic)
		}
		return p, nil
	}
}

type stageRunner struct {
	stage decision.Stage
	tier  tier.Tier
}

func (p *Pipeline) tail() []stageRunner {
	return []stageRunner{
		{stage: decision.StageRules, tier: p.Rules},
		{stage: decision.StageDeliberative, tier: p.Deliberative},
		{stage: decision.StageStrategic, tier: p.Strategic},
	}
}

func (p *Pipeline) run(ctx context.Context, s decision.Snapshot) (decision.Action, decision.Stage) {
	if p.Reflex != nil && p.Reflex.ShouldHandle(s) {
		return p.Reflex.Decide(ctx, s), decision.StageReflex
	}
	if p.Coordinators != nil {
		if a := p.Coordinators.Decide(s); !a.IsNone() {
			return a, decision.StageCoordinator
		}
	}
	for _, r := range p.tail() {
		if r.tier == nil || !r.tier.ShouldHandle(s) {
			continue
		}
		return r.tier.Decide(ctx, s), r.stage
	}
	return fallbackAction("no stage handled the snapshot"), decision.StageFallback
}

func fallbackAction(reason string) decision.Action {
	return decision.NoOp(reason, 0)
}

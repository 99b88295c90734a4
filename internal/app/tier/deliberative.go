package tier

import (
	"context"
	"time"

	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"
)

const (
	DefaultDeliberativeTimeout = 100 * time.Millisecond
	deliberativePrompt         = "predict the best tactical action for the current game state"
	deliberativeFallback       = 0.1
)

// Deliberative asks the prediction collaborator for an action.
type Deliberative struct {
	Client  ports.Collaborator
	Timeout time.Duration
}

func (Deliberative) Stage() decision.Stage { return decision.StageDeliberative }

func (d Deliberative) ShouldHandle(s decision.Snapshot) bool {
	return d.Client != nil && s.HasEntities()
}

func (d Deliberative) Decide(ctx context.Context, s decision.Snapshot) decision.Action {
	if d.Client == nil {
		return decision.NoOp("deliberative: "+ports.ErrNotConfigured.Error(), deliberativeFallback)
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDeliberativeTimeout
	}
	a, err := consult(ctx, decision.StageDeliberative, d.Client, timeout, ports.RemoteQuery{
		Prompt:    deliberativePrompt,
		Context:   map[string]string{"tier": string(decision.StageDeliberative)},
		Snapshot:  s,
		RequestID: RequestIDFrom(ctx),
	})
	if err != nil {
		return decision.NoOp("deliberative fallback: "+err.Error(), deliberativeFallback)
	}
	return a
}

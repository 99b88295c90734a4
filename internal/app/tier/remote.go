package tier

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"
)

// consult runs one bounded collaborator query. The returned error has already
// been logged by the time the caller sees it.
func consult(ctx context.Context, stage decision.Stage, c ports.Collaborator, timeout time.Duration, q ports.RemoteQuery) (decision.Action, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		action decision.Action
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		a, err := c.Query(callCtx, q)
		done <- reply{action: a, err: err}
	}()

	var r reply
	select {
	case r = <-done:
		if r.err == nil && callCtx.Err() != nil {
			r.err = callCtx.Err()
		}
	case <-callCtx.Done():
		r.err = callCtx.Err()
	}
	if r.err != nil {
		log.Warn().
			Err(r.err).
			Str("stage", string(stage)).
			Str("collaborator", c.Name()).
			Str("request_id", q.RequestID).
			Dur("timeout", timeout).
			Msg("remote decision failed")
		return decision.Action{}, r.err
	}
	return r.action, nil
}

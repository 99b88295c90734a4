package status

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"tacticore/internal/app/ports"
)

// Remote binds a collaborator to the stage it serves. A nil Client reports
// the stage as disabled.
type Remote struct {
	Stage  string
	Client ports.Collaborator
}

type SessionCounter interface {
	Sessions() int
}

type UseCase struct {
	Remotes      []Remote
	Coordinators []string
	Sessions     SessionCounter
	Version      string
	StartedAt    time.Time
	Now          func() time.Time
}

// Execute probes every configured collaborator concurrently. Local stages
// cannot fail and always report ready.
func (u UseCase) Execute(ctx context.Context) (Response, error) {
	out := Response{
		Status: StatusHealthy,
		Components: map[string]Component{
			"reflex":      {Status: ComponentReady},
			"coordinator": {Status: ComponentReady},
			"rules":       {Status: ComponentReady},
		},
		Coordinators: append([]string(nil), u.Coordinators...),
		Version:      u.Version,
	}

	results := make([]Component, len(u.Remotes))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range u.Remotes {
		if r.Client == nil {
			results[i] = Component{Status: ComponentDisabled}
			continue
		}
		g.Go(func() error {
			if err := r.Client.Health(gctx); err != nil {
				results[i] = Component{Status: ComponentUnreachable, Error: err.Error()}
				return nil
			}
			results[i] = Component{Status: ComponentHealthy}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Response{}, err
	}
	for i, r := range u.Remotes {
		out.Components[r.Stage] = results[i]
		if results[i].Status == ComponentUnreachable {
			out.Status = StatusDegraded
		}
	}

	if u.Sessions != nil {
		out.Sessions = u.Sessions.Sessions()
	}
	if !u.StartedAt.IsZero() {
		out.UptimeSeconds = int64(u.now().Sub(u.StartedAt) / time.Second)
	}
	return out, nil
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

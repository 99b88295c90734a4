package ports

import (
	"context"

	"tacticore/internal/domain/decision"
)

// RemoteQuery is what a remote decision collaborator receives.
type RemoteQuery struct {
	Prompt    string
	Context   map[string]string
	Snapshot  decision.Snapshot
	RequestID string
}

// Collaborator is a remote decision service. Implementations are shared by
// every session and must be safe for concurrent use.
type Collaborator interface {
	Name() string
	Query(ctx context.Context, q RemoteQuery) (decision.Action, error)
	Health(ctx context.Context) error
}

package ports

import (
	"context"
	"time"

	"tacticore/internal/domain/decision"
)

type DecisionRecord struct {
	SessionID    string
	RequestID    string
	Stage        decision.Stage
	ActionType   decision.ActionKind
	ActionReason string
	Confidence   float64
	LatencyMs    float64
	// TimestampMs is the client's snapshot time; zero when the client sent none.
	TimestampMs int64
	DecidedAt   time.Time
}

// DecisionQuery selects records of one session decided in [From, To). A zero
// bound leaves that side open. Limit applies after the window; zero means all.
type DecisionQuery struct {
	SessionID string
	From      time.Time
	To        time.Time
	Limit     int
}

func (q DecisionQuery) InWindow(t time.Time) bool {
	if !q.From.IsZero() && t.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !t.Before(q.To) {
		return false
	}
	return true
}

// DecisionJournal keeps an append-only trail of dispatched decisions.
// ListBySession returns the newest records first.
type DecisionJournal interface {
	Append(ctx context.Context, rec DecisionRecord) error
	ListBySession(ctx context.Context, q DecisionQuery) ([]DecisionRecord, error)
}

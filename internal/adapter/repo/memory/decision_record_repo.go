package memory

import (
	"context"
	"sync"

	"tacticore/internal/app/ports"
)

// DecisionRecordRepo keeps the most recent records per session in process.
type DecisionRecordRepo struct {
	mu         sync.RWMutex
	perSession int
	records    map[string][]ports.DecisionRecord
}

// NewDecisionRecordRepo keeps at most perSession records for each session;
// zero or less keeps everything.
func NewDecisionRecordRepo(perSession int) *DecisionRecordRepo {
	return &DecisionRecordRepo{
		perSession: perSession,
		records:    make(map[string][]ports.DecisionRecord),
	}
}

func (r *DecisionRecordRepo) Append(_ context.Context, rec ports.DecisionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := append(r.records[rec.SessionID], rec)
	if r.perSession > 0 && len(list) > r.perSession {
		list = append([]ports.DecisionRecord(nil), list[len(list)-r.perSession:]...)
	}
	r.records[rec.SessionID] = list
	return nil
}

func (r *DecisionRecordRepo) ListBySession(_ context.Context, q ports.DecisionQuery) ([]ports.DecisionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.records[q.SessionID]
	out := make([]ports.DecisionRecord, 0, min(len(list), max(q.Limit, 0)))
	for i := len(list) - 1; i >= 0; i-- {
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		if q.InWindow(list[i].DecidedAt) {
			out = append(out, list[i])
		}
	}
	return out, nil
}

package inmemory

import (
	"sync"
	"time"

	"tacticore/internal/domain/decision"
)

type Snapshot struct {
	RequestsTotal  uint64            `json:"requests_total"`
	RequestsByTier map[string]uint64 `json:"requests_by_tier"`
	AvgLatencyMs   float64           `json:"avg_latency_ms"`
}

// Recorder counts decisions per stage and keeps a running mean latency.
type Recorder struct {
	mu      sync.Mutex
	total   uint64
	byStage map[decision.Stage]uint64
	meanMs  float64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byStage: map[decision.Stage]uint64{},
	}
}

func (r *Recorder) RecordDecision(stage decision.Stage, latency time.Duration) {
	ms := float64(latency) / float64(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.byStage[stage]++
	r.meanMs += (ms - r.meanMs) / float64(r.total)
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		RequestsTotal:  r.total,
		AvgLatencyMs:   r.meanMs,
		RequestsByTier: make(map[string]uint64, len(decision.Stages())),
	}
	for _, stage := range decision.Stages() {
		out.RequestsByTier[string(stage)] = r.byStage[stage]
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

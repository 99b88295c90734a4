package tier

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"
)

const (
	DefaultStrategicTimeout = 5 * time.Minute
	strategicFallback       = 0.2
)

// Strategic consults the reasoning collaborator at most once per interval.
// The interval counts from the last successful reply, so failures are retried
// by the next request that passes the gate.
type Strategic struct {
	Client  ports.Collaborator
	Timeout time.Duration
	Tuning  decision.StrategicTuning
	Now     func() time.Time

	mu          sync.Mutex
	lastSuccess time.Time
}

func NewStrategic(client ports.Collaborator, timeout time.Duration, t decision.StrategicTuning) *Strategic {
	return &Strategic{Client: client, Timeout: timeout, Tuning: t, Now: time.Now}
}

func (*Strategic) Stage() decision.Stage { return decision.StageStrategic }

func (st *Strategic) ShouldHandle(s decision.Snapshot) bool {
	if st.Client == nil {
		return false
	}
	if !st.intervalElapsed() {
		return false
	}
	return st.atMilestone(s.Character.Level) || !s.HasEntities()
}

func (st *Strategic) Decide(ctx context.Context, s decision.Snapshot) decision.Action {
	if st.Client == nil {
		return decision.NoOp("strategic: "+ports.ErrNotConfigured.Error(), strategicFallback)
	}
	timeout := st.Timeout
	if timeout <= 0 {
		timeout = DefaultStrategicTimeout
	}
	a, err := consult(ctx, decision.StageStrategic, st.Client, timeout, ports.RemoteQuery{
		Prompt: "plan the next strategic goal for this character",
		Context: map[string]string{
			"tier":      string(decision.StageStrategic),
			"level":     strconv.Itoa(s.Character.Level),
			"job_class": s.Character.JobClass,
			"map":       s.Character.Position.Map,
		},
		Snapshot:  s,
		RequestID: RequestIDFrom(ctx),
	})
	if err != nil {
		return decision.NoOp("strategic fallback: "+err.Error(), strategicFallback)
	}
	st.mu.Lock()
	st.lastSuccess = st.now()
	st.mu.Unlock()
	return a
}

// LastSuccess reports when the collaborator last answered.
func (st *Strategic) LastSuccess() time.Time {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastSuccess
}

func (st *Strategic) intervalElapsed() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.lastSuccess.IsZero() {
		return true
	}
	return st.now().Sub(st.lastSuccess) >= st.Tuning.MinInterval
}

func (st *Strategic) atMilestone(level int) bool {
	every := st.Tuning.MilestoneEvery
	if every <= 0 {
		return false
	}
	return level >= every && level%every == 0
}

func (st *Strategic) now() time.Time {
	if st.Now == nil {
		return time.Now()
	}
	return st.Now()
}

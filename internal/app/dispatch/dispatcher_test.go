package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tacticore/internal/app/coordinator"
	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"
)

type fakeTier struct {
	stage  decision.Stage
	handle bool
	action decision.Action
	panics bool
	calls  *int
}

func (f fakeTier) Stage() decision.Stage { return f.stage }

func (f fakeTier) ShouldHandle(decision.Snapshot) bool { return f.handle }

func (f fakeTier) Decide(context.Context, decision.Snapshot) decision.Action {
	if f.calls != nil {
		*f.calls++
	}
	if f.panics {
		panic("boom")
	}
	return f.action
}

type fakeArbiter struct{ action decision.Action }

func (f fakeArbiter) Decide(decision.Snapshot) decision.Action { return f.action }

type fakeMetrics struct {
	mu      sync.Mutex
	byStage map[decision.Stage]int
}

func (m *fakeMetrics) RecordDecision(stage decision.Stage, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byStage == nil {
		m.byStage = map[decision.Stage]int{}
	}
	m.byStage[stage]++
}

type fakeJournal struct {
	mu      sync.Mutex
	records []ports.DecisionRecord
	err     error
}

func (j *fakeJournal) Append(_ context.Context, rec ports.DecisionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, rec)
	return nil
}

func (j *fakeJournal) ListBySession(context.Context, ports.DecisionQuery) ([]ports.DecisionRecord, error) {
	return nil, nil
}

// stallingJournal blocks every append until its context ends.
type stallingJournal struct {
	mu       sync.Mutex
	canceled int
}

func (j *stallingJournal) Append(ctx context.Context, _ ports.DecisionRecord) error {
	select {
	case <-ctx.Done():
		j.mu.Lock()
		j.canceled++
		j.mu.Unlock()
		return ctx.Err()
	case <-time.After(3 * time.Second):
		return nil
	}
}

func (j *stallingJournal) ListBySession(context.Context, ports.DecisionQuery) ([]ports.DecisionRecord, error) {
	return nil, nil
}

func act(t *testing.T, kind decision.ActionKind, reason string) decision.Action {
	t.Helper()
	a, err := decision.NewAction(kind, reason, 0.8, nil)
	if err != nil {
		t.Fatalf("NewAction: %v", err)
	}
	return a
}

func staticFactory(p *Pipeline) PipelineFactory {
	return func() (*Pipeline, error) { return p, nil }
}

func mustDispatcher(t *testing.T, cfg Config) *Dispatcher {
	t.Helper()
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDispatcher_CascadeOrder(t *testing.T) {
	rulesCalls := 0
	cases := []struct {
		name     string
		pipeline *Pipeline
		want     decision.Stage
	}{
		{
			name: "reflex short-circuits",
			pipeline: &Pipeline{
				Reflex:       fakeTier{handle: true, action: act(t, decision.KindItem, "reflex")},
				Coordinators: fakeArbiter{action: act(t, decision.KindAttack, "coord")},
				Rules:        fakeTier{handle: true, action: act(t, decision.KindAttack, "rules"), calls: &rulesCalls},
			},
			want: decision.StageReflex,
		},
		{
			name: "coordinator non-none wins over rules",
			pipeline: &Pipeline{
				Reflex:       fakeTier{},
				Coordinators: fakeArbiter{action: act(t, decision.KindAttack, "coord")},
				Rules:        fakeTier{handle: true, action: act(t, decision.KindAttack, "rules"), calls: &rulesCalls},
			},
			want: decision.StageCoordinator,
		},
		{
			name: "coordinator none falls through to rules",
			pipeline: &Pipeline{
				Reflex:       fakeTier{},
				Coordinators: fakeArbiter{action: decision.NoOp("watching", 0.3)},
				Rules:        fakeTier{handle: true, action: act(t, decision.KindMove, "rules")},
			},
			want: decision.StageRules,
		},
		{
			name: "remote tiers in order",
			pipeline: &Pipeline{
				Reflex:       fakeTier{},
				Coordinators: fakeArbiter{},
				Rules:        fakeTier{},
				Deliberative: fakeTier{},
				Strategic:    fakeTier{handle: true, action: act(t, decision.KindTalk, "strategic")},
			},
			want: decision.StageStrategic,
		},
		{
			name:     "nothing handles",
			pipeline: &Pipeline{Reflex: fakeTier{}, Coordinators: fakeArbiter{}, Rules: fakeTier{}},
			want:     decision.StageFallback,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := mustDispatcher(t, Config{Factory: staticFactory(tc.pipeline)})
			resp := d.Decide(context.Background(), Request{SessionID: "s1", RequestID: "r1"})
			if resp.Stage != tc.want {
				t.Fatalf("expected stage %s, got %s", tc.want, resp.Stage)
			}
			if resp.RequestID != "r1" || resp.SessionID != "s1" {
				t.Fatalf("ids not echoed: %+v", resp)
			}
		})
	}
	if rulesCalls != 0 {
		t.Fatalf("rules must not run once an earlier stage won, ran %d times", rulesCalls)
	}
}

func TestDispatcher_RecoversFromPanickingStage(t *testing.T) {
	metrics := &fakeMetrics{}
	d := mustDispatcher(t, Config{
		Factory: staticFactory(&Pipeline{Reflex: fakeTier{handle: true, panics: true}}),
		Metrics: metrics,
	})
	resp := d.Decide(context.Background(), Request{SessionID: "s1"})
	if resp.Stage != decision.StageFallback || !resp.Action.IsNone() {
		t.Fatalf("expected fallback none, got %s %s", resp.Stage, resp.Action.Kind())
	}
	if metrics.byStage[decision.StageFallback] != 1 {
		t.Fatalf("panic must still be counted, got %v", metrics.byStage)
	}
	// The session lock must have been released.
	resp = d.Decide(context.Background(), Request{SessionID: "s1"})
	if resp.Stage != decision.StageFallback {
		t.Fatalf("second call should not deadlock and should fall back again")
	}
}

func TestDispatcher_RecordsLatencyAndJournal(t *testing.T) {
	clock := time.Unix(100, 0)
	calls := 0
	now := func() time.Time {
		calls++
		return clock.Add(time.Duration(calls-1) * 7 * time.Millisecond)
	}
	journal := &fakeJournal{}
	d := mustDispatcher(t, Config{
		Factory: staticFactory(&Pipeline{Reflex: fakeTier{handle: true, action: act(t, decision.KindItem, "heal")}}),
		Journal: journal,
		Now:     now,
	})
	resp := d.Decide(context.Background(), Request{SessionID: "s9", RequestID: "r9", TimestampMs: 1234})
	if resp.LatencyMs != 7 {
		t.Fatalf("expected 7ms latency, got %v", resp.LatencyMs)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(journal.records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(journal.records))
	}
	rec := journal.records[0]
	if rec.Stage != decision.StageReflex || rec.ActionType != decision.KindItem || rec.RequestID != "r9" || rec.ActionReason != "heal" || rec.TimestampMs != 1234 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestDispatcher_JournalFailureDoesNotAffectResponse(t *testing.T) {
	d := mustDispatcher(t, Config{
		Factory: staticFactory(&Pipeline{Reflex: fakeTier{handle: true, action: act(t, decision.KindItem, "heal")}}),
		Journal: &fakeJournal{err: errors.New("db down")},
	})
	resp := d.Decide(context.Background(), Request{})
	if resp.Stage != decision.StageReflex || resp.SessionID != DefaultSession {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDispatcher_StalledJournalDoesNotBlockDecisions(t *testing.T) {
	journal := &stallingJournal{}
	d := mustDispatcher(t, Config{
		Factory:        staticFactory(&Pipeline{Reflex: fakeTier{handle: true, action: act(t, decision.KindItem, "heal")}}),
		Journal:        journal,
		JournalTimeout: 20 * time.Millisecond,
	})
	start := time.Now()
	for i := 0; i < 5; i++ {
		if resp := d.Decide(context.Background(), Request{SessionID: "s1"}); resp.Stage != decision.StageReflex {
			t.Fatalf("unexpected stage %s", resp.Stage)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("decisions blocked on journal for %v", elapsed)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	journal.mu.Lock()
	defer journal.mu.Unlock()
	if journal.canceled != 5 {
		t.Fatalf("expected every append cut off by its timeout, got %d", journal.canceled)
	}
}

func TestDispatcher_FullJournalQueueDropsRecords(t *testing.T) {
	journal := &stallingJournal{}
	d := mustDispatcher(t, Config{
		Factory:        staticFactory(&Pipeline{Reflex: fakeTier{handle: true, action: act(t, decision.KindItem, "heal")}}),
		Journal:        journal,
		JournalQueue:   1,
		JournalTimeout: 50 * time.Millisecond,
	})
	start := time.Now()
	for i := 0; i < 20; i++ {
		d.Decide(context.Background(), Request{SessionID: "s1"})
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("full queue blocked decisions for %v", elapsed)
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	journal.mu.Lock()
	defer journal.mu.Unlock()
	if journal.canceled >= 20 {
		t.Fatalf("expected some records dropped, all %d were written", journal.canceled)
	}
}

func TestDispatcher_CloseGivesUpAtDeadline(t *testing.T) {
	d := mustDispatcher(t, Config{
		Factory:        staticFactory(&Pipeline{Reflex: fakeTier{handle: true, action: act(t, decision.KindItem, "heal")}}),
		Journal:        &stallingJournal{},
		JournalTimeout: time.Second,
	})
	d.Decide(context.Background(), Request{SessionID: "s1"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	// Closing twice is safe and decisions after close still answer.
	_ = d.Close(ctx)
	if resp := d.Decide(context.Background(), Request{SessionID: "s1"}); resp.Stage != decision.StageReflex {
		t.Fatalf("unexpected stage after close %s", resp.Stage)
	}
}

func TestNew_RejectsBrokenFactory(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrMissingFactory) {
		t.Fatalf("expected ErrMissingFactory, got %v", err)
	}
	_, err := New(Config{Factory: func() (*Pipeline, error) { return nil, coordinator.ErrEmptyRegistry }})
	if !errors.Is(err, coordinator.ErrEmptyRegistry) {
		t.Fatalf("expected ErrEmptyRegistry, got %v", err)
	}
}

func TestDispatcher_OnePipelinePerSession(t *testing.T) {
	built := 0
	var mu sync.Mutex
	factory := func() (*Pipeline, error) {
		mu.Lock()
		built++
		mu.Unlock()
		return &Pipeline{Reflex: fakeTier{}}, nil
	}
	d := mustDispatcher(t, Config{Factory: factory})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for j := 0; j < 25; j++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				d.Decide(context.Background(), Request{SessionID: id})
			}(fmt.Sprintf("bot-%d", i))
		}
	}
	wg.Wait()
	if d.Sessions() != 4 {
		t.Fatalf("expected 4 sessions, got %d", d.Sessions())
	}
	// One probe pipeline from New plus one per session.
	if built != 5 {
		t.Fatalf("expected 5 pipelines built, got %d", built)
	}
}

func TestDispatcher_DefaultFactoryScenarios(t *testing.T) {
	metrics := &fakeMetrics{}
	d := mustDispatcher(t, Config{
		Factory: NewPipelineFactory(decision.DefaultTuning(), Remotes{}),
		Metrics: metrics,
	})
	character := decision.Character{
		Name: "Bot", Level: 21, HP: 20, MaxHP: 100, SP: 30, MaxSP: 30,
		Position: decision.Position{Map: "prt_fild08", X: 50, Y: 60},
	}

	s1 := decision.Snapshot{
		Character: character,
		Hostiles:  []decision.Hostile{{ID: "m1", Distance: 1, Aggressive: true}},
		Inventory: []decision.Item{{ID: "501", Name: "Red Potion", Amount: 4}, {ID: "504", Name: "White Potion", Amount: 1}},
	}
	resp := d.Decide(context.Background(), Request{SessionID: "a", Snapshot: s1})
	if resp.Stage != decision.StageReflex || resp.Action.Param("item") != "White Potion" || resp.Action.Confidence() < 0.9 {
		t.Fatalf("scenario 1: got %s %v %v", resp.Stage, resp.Action.Params(), resp.Action.Confidence())
	}

	s2 := decision.Snapshot{Character: character, Hostiles: []decision.Hostile{
		{ID: "far", Distance: 9}, {ID: "near", Distance: 2}, {ID: "mid", Distance: 6},
	}}
	s2.Character.HP = 70
	resp = d.Decide(context.Background(), Request{SessionID: "b", Snapshot: s2})
	if resp.Stage != decision.StageCoordinator || resp.Action.Param("target") != "near" {
		t.Fatalf("scenario 2: got %s %v", resp.Stage, resp.Action.Params())
	}

	s3 := decision.Snapshot{Character: character, Friendlies: []decision.Friendly{{Name: "Alice", Distance: 3}}}
	s3.Character.HP = 100
	resp = d.Decide(context.Background(), Request{SessionID: "c", Snapshot: s3})
	if resp.Stage != decision.StageFallback || !resp.Action.IsNone() {
		t.Fatalf("scenario 3: expected cascade to fall back, got %s %s", resp.Stage, resp.Action.Kind())
	}
	if metrics.byStage[decision.StageFallback] != 1 || metrics.byStage[decision.StageReflex] != 1 {
		t.Fatalf("unexpected stage counts %v", metrics.byStage)
	}
}

package httpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	metricsinmem "tacticore/internal/adapter/metrics/inmemory"
	memrepo "tacticore/internal/adapter/repo/memory"
	"tacticore/internal/app/dispatch"
	"tacticore/internal/app/ports"
	"tacticore/internal/app/replay"
	"tacticore/internal/app/status"
	"tacticore/internal/domain/decision"
)

type fakeDecider struct {
	got dispatch.Request
}

func (f *fakeDecider) Decide(_ context.Context, req dispatch.Request) dispatch.Response {
	f.got = req
	a, _ := decision.NewAction(decision.KindAttack, "combat: basic attack", 0.75, map[string]string{"target": "m1"})
	return dispatch.Response{
		Action:    a,
		Stage:     decision.StageCoordinator,
		LatencyMs: 1.25,
		RequestID: req.RequestID,
		SessionID: req.SessionID,
	}
}

func errorCode(t *testing.T, ctx *app.RequestContext) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestDecide_DefaultsSessionAndRequestID(t *testing.T) {
	d := &fakeDecider{}
	h := Handler{Decider: d, NewRequestID: func() string { return "generated-1" }}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"game_state":{"character":{"name":"Bot","hp":70,"max_hp":100},"monsters":[{"id":"m1","distance":2}]},"timestamp_ms":42}`))

	h.decide(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if d.got.SessionID != "Bot" || d.got.RequestID != "generated-1" || d.got.TimestampMs != 42 {
		t.Fatalf("unexpected dispatch request %+v", d.got)
	}
	if len(d.got.Snapshot.Hostiles) != 1 || d.got.Snapshot.Character.MaxHP != 100 {
		t.Fatalf("snapshot not decoded: %+v", d.got.Snapshot)
	}
	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["tier_used"] != "coordinator" || body["request_id"] != "generated-1" || body["session_id"] != "Bot" {
		t.Fatalf("unexpected response %v", body)
	}
	action, _ := body["action"].(map[string]any)
	if action["type"] != "attack" {
		t.Fatalf("unexpected action %v", action)
	}
	if got := string(ctx.Response.Header.Peek(requestIDHeader)); got != "generated-1" {
		t.Fatalf("expected request id header, got %q", got)
	}
}

func TestDecide_ExplicitIDsWin(t *testing.T) {
	d := &fakeDecider{}
	h := Handler{Decider: d}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"request_id":"r-1","session_id":"bot-7","game_state":{"character":{"name":"Bot"}}}`))
	h.decide(context.Background(), ctx)
	if d.got.RequestID != "r-1" || d.got.SessionID != "bot-7" {
		t.Fatalf("unexpected ids %+v", d.got)
	}
}

func TestDecide_EmptyBodyUsesDefaultSession(t *testing.T) {
	d := &fakeDecider{}
	h := Handler{Decider: d}
	ctx := &app.RequestContext{}
	h.decide(context.Background(), ctx)
	if d.got.SessionID != dispatch.DefaultSession {
		t.Fatalf("expected default session, got %q", d.got.SessionID)
	}
	if d.got.RequestID == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestDecide_InvalidJSON(t *testing.T) {
	h := Handler{Decider: &fakeDecider{}}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"game_state":`))
	h.decide(context.Background(), ctx)
	if got, want := ctx.Response.StatusCode(), consts.StatusBadRequest; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if got := errorCode(t, ctx); got != "invalid_json" {
		t.Fatalf("expected invalid_json, got %q", got)
	}
}

func TestDecide_RejectsMistypedSnapshotField(t *testing.T) {
	h := Handler{Decider: &fakeDecider{}}
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"game_state":{"character":{"hp":"lots"}}}`))
	h.decide(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
		t.Fatalf("expected 400 for a mistyped field, got %d", got)
	}
}

func TestHealth_ReportsComponents(t *testing.T) {
	started := time.Unix(100, 0)
	h := Handler{StatusUC: status.UseCase{
		Remotes:      []status.Remote{{Stage: "deliberative"}},
		Coordinators: []string{"combat"},
		Version:      "test",
		StartedAt:    started,
		Now:          func() time.Time { return started.Add(5 * time.Second) },
	}}
	ctx := &app.RequestContext{}
	h.health(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d", got)
	}
	var body status.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != status.StatusHealthy || body.UptimeSeconds != 5 || body.Components["deliberative"].Status != status.ComponentDisabled {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestMetrics_ExposesRecorderSnapshot(t *testing.T) {
	rec := metricsinmem.NewRecorder()
	rec.RecordDecision(decision.StageReflex, 4*time.Millisecond)
	h := Handler{Metrics: rec}
	ctx := &app.RequestContext{}
	h.metrics(context.Background(), ctx)

	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"requests_total", "requests_by_tier", "avg_latency_ms"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing key %q in %v", key, body)
		}
	}
	if body["requests_total"] != 1.0 {
		t.Fatalf("expected 1 request, got %v", body["requests_total"])
	}
}

func TestMetrics_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.metrics(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
}

func TestDecisions_ListsJournal(t *testing.T) {
	journal := memrepo.NewDecisionRecordRepo(0)
	_ = journal.Append(context.Background(), ports.DecisionRecord{SessionID: "s1", RequestID: "r1", Stage: decision.StageRules, ActionType: decision.KindMove})
	h := Handler{ReplayUC: replay.UseCase{Journal: journal}}

	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/v1/decisions?session_id=s1&limit=5")
	h.decisions(context.Background(), ctx)
	if got := ctx.Response.StatusCode(); got != consts.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, ctx.Response.Body())
	}
	var body replay.Response
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].Stage != "rules" {
		t.Fatalf("unexpected records %+v", body.Records)
	}
}

func TestDecisions_BadRequests(t *testing.T) {
	h := Handler{ReplayUC: replay.UseCase{Journal: memrepo.NewDecisionRecordRepo(0)}}
	for _, uri := range []string{"/api/v1/decisions", "/api/v1/decisions?session_id=s1&limit=abc"} {
		ctx := &app.RequestContext{}
		ctx.Request.SetRequestURI(uri)
		h.decisions(context.Background(), ctx)
		if got := ctx.Response.StatusCode(); got != consts.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", uri, got)
		}
		if got := errorCode(t, ctx); got != "bad_request" {
			t.Fatalf("%s: expected bad_request, got %q", uri, got)
		}
	}
}

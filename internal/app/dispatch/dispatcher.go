package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tacticore/internal/app/ports"
	"tacticore/internal/app/tier"
	"tacticore/internal/domain/decision"
)

var ErrMissingFactory = errors.New("dispatch: pipeline factory is required")

const DefaultSession = "default"

type Config struct {
	Factory PipelineFactory
	Metrics ports.DecisionMetrics
	// Journal is optional; appends run in the background and failures are
	// logged and ignored.
	Journal ports.DecisionJournal
	// JournalTimeout bounds one append; JournalQueue bounds pending records.
	JournalTimeout time.Duration
	JournalQueue   int
	Now            func() time.Time
}

type session struct {
	mu       sync.Mutex
	pipeline *Pipeline
}

// Dispatcher runs the decision cascade for many concurrent sessions. Each
// session owns one pipeline and never runs two decisions at once.
type Dispatcher struct {
	factory PipelineFactory
	metrics ports.DecisionMetrics
	journal *journalWriter
	now     func() time.Time
	tracer  trace.Tracer

	mu       sync.Mutex
	sessions map[string]*session
}

// New validates the factory by building one pipeline, so registry mistakes
// surface at startup.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Factory == nil {
		return nil, ErrMissingFactory
	}
	if _, err := cfg.Factory(); err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	d := &Dispatcher{
		factory:  cfg.Factory,
		metrics:  cfg.Metrics,
		now:      now,
		tracer:   otel.Tracer("tacticore/dispatch"),
		sessions: map[string]*session{},
	}
	if cfg.Journal != nil {
		d.journal = newJournalWriter(cfg.Journal, cfg.JournalQueue, cfg.JournalTimeout)
	}
	return d, nil
}

// Close flushes pending journal records, giving up when ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d.journal == nil {
		return nil
	}
	return d.journal.close(ctx)
}

// Sessions reports how many session pipelines are live.
func (d *Dispatcher) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

func (d *Dispatcher) Decide(ctx context.Context, req Request) Response {
	start := d.now()
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSession
	}

	ctx, span := d.tracer.Start(ctx, "dispatch.decide", trace.WithAttributes(
		attribute.String("tacticore.session_id", sessionID),
		attribute.String("tacticore.request_id", req.RequestID),
	))
	defer span.End()
	ctx = tier.WithRequestID(ctx, req.RequestID)

	action, stage := d.decideInSession(ctx, sessionID, req.Snapshot)
	latency := d.now().Sub(start)
	if latency < 0 {
		latency = 0
	}
	latencyMs := float64(latency) / float64(time.Millisecond)

	if d.metrics != nil {
		d.metrics.RecordDecision(stage, latency)
	}
	span.SetAttributes(
		attribute.String("tacticore.stage", string(stage)),
		attribute.String("tacticore.action", string(action.Kind())),
		attribute.Float64("tacticore.confidence", action.Confidence()),
	)
	d.appendJournal(ports.DecisionRecord{
		SessionID:    sessionID,
		RequestID:    req.RequestID,
		Stage:        stage,
		ActionType:   action.Kind(),
		ActionReason: action.Reason(),
		Confidence:   action.Confidence(),
		LatencyMs:    latencyMs,
		TimestampMs:  snapshotTime(req),
		DecidedAt:    start,
	})

	log.Debug().
		Str("session_id", sessionID).
		Str("request_id", req.RequestID).
		Str("stage", string(stage)).
		Str("action", string(action.Kind())).
		Float64("confidence", action.Confidence()).
		Float64("latency_ms", latencyMs).
		Msg("decision dispatched")

	return Response{
		Action:    action,
		Stage:     stage,
		LatencyMs: latencyMs,
		RequestID: req.RequestID,
		SessionID: sessionID,
	}
}

func (d *Dispatcher) decideInSession(ctx context.Context, sessionID string, s decision.Snapshot) (action decision.Action, stage decision.Stage) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("session_id", sessionID).
				Interface("panic", r).
				Msg("decision stage panicked")
			action, stage = fallbackAction(fmt.Sprintf("recovered from stage failure: %v", r)), decision.StageFallback
		}
	}()

	sess, err := d.session(sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("build session pipeline")
		return fallbackAction("pipeline unavailable: " + err.Error()), decision.StageFallback
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.pipeline.run(ctx, s)
}

func (d *Dispatcher) session(id string) (*session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[id]; ok {
		return s, nil
	}
	p, err := d.factory()
	if err != nil {
		return nil, err
	}
	s := &session{pipeline: p}
	d.sessions[id] = s
	return s, nil
}

func (d *Dispatcher) appendJournal(rec ports.DecisionRecord) {
	if d.journal == nil {
		return
	}
	d.journal.enqueue(rec)
}

func snapshotTime(req Request) int64 {
	if req.TimestampMs > 0 {
		return req.TimestampMs
	}
	return req.Snapshot.TimestampMs
}

package dispatch

import "tacticore/internal/domain/decision"

type Request struct {
	SessionID   string
	RequestID   string
	TimestampMs int64
	Snapshot    decision.Snapshot
}

type Response struct {
	Action    decision.Action `json:"action"`
	Stage     decision.Stage  `json:"tier_used"`
	LatencyMs float64         `json:"latency_ms"`
	RequestID string          `json:"request_id"`
	SessionID string          `json:"session_id"`
}

package replay

import "time"

type Request struct {
	SessionID   string
	Limit       int
	DecidedFrom int64
	DecidedTo   int64
}

type Record struct {
	RequestID    string    `json:"request_id"`
	Stage        string    `json:"tier_used"`
	ActionType   string    `json:"action_type"`
	ActionReason string    `json:"reason"`
	Confidence   float64   `json:"confidence"`
	LatencyMs    float64   `json:"latency_ms"`
	TimestampMs  int64     `json:"timestamp_ms,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

type Summary struct {
	ByStage       map[string]int `json:"by_tier"`
	AvgLatencyMs  float64        `json:"avg_latency_ms"`
	AvgConfidence float64        `json:"avg_confidence"`
}

type Response struct {
	SessionID string   `json:"session_id"`
	Records   []Record `json:"records"`
	Summary   Summary  `json:"summary"`
}

package ports

import (
	"time"

	"tacticore/internal/domain/decision"
)

type DecisionMetrics interface {
	RecordDecision(stage decision.Stage, latency time.Duration)
}

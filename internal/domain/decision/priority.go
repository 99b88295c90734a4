package decision

// Priority orders coordinator proposals. Lower values are more urgent; the
// numeric value carries no magnitude.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
	PriorityIdle
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// MoreUrgentThan reports whether p sorts strictly ahead of other.
func (p Priority) MoreUrgentThan(other Priority) bool {
	return p < other
}

// Stage names the cascade step that produced a decision.
type Stage string

const (
	StageReflex       Stage = "reflex"
	StageCoordinator  Stage = "coordinator"
	StageRules        Stage = "rules"
	StageDeliberative Stage = "deliberative"
	StageStrategic    Stage = "strategic"
	StageFallback     Stage = "fallback"
)

func Stages() []Stage {
	return []Stage{StageReflex, StageCoordinator, StageRules, StageDeliberative, StageStrategic, StageFallback}
}

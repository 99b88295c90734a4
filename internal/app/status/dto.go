package status

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	ComponentReady       = "ready"
	ComponentHealthy     = "healthy"
	ComponentUnreachable = "unreachable"
	ComponentDisabled    = "disabled"
)

type Component struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Response struct {
	Status        string               `json:"status"`
	Components    map[string]Component `json:"components"`
	Coordinators  []string             `json:"coordinators"`
	Sessions      int                  `json:"sessions"`
	UptimeSeconds int64                `json:"uptime_seconds"`
	Version       string               `json:"version"`
}

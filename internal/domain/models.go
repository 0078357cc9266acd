package domain

import "time"

// HealthState is the verdict for one service or for the whole system.
type HealthState string

const (
	Healthy   HealthState = "healthy"
	Degraded  HealthState = "degraded"
	Unhealthy HealthState = "unhealthy"
)

// Up reports whether the state counts as reachable for alerting.
func (s HealthState) Up() bool { return s != Unhealthy }

// ServiceHealth is one service's verdict from one monitor run.
type ServiceHealth struct {
	Name         string      `json:"name"`
	Host         string      `json:"host"`
	Status       HealthState `json:"status"`
	Message      string      `json:"message,omitempty"`
	LatencyMS    *int64      `json:"latencyMs,omitempty"`
	LatencyAvgMS *float64    `json:"latencyAvgMs,omitempty"`
	LastChecked  time.Time   `json:"lastChecked"`
}

// HealthStatus aggregates every monitored service.
type HealthStatus struct {
	Status    HealthState     `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Uptime    float64         `json:"uptime"` // seconds since process start
	Services  []ServiceHealth `json:"services"`
}

// Overall folds service states: any unhealthy wins, then any degraded.
func Overall(services []ServiceHealth) HealthState {
	state := Healthy
	for _, s := range services {
		switch s.Status {
		case Unhealthy:
			return Unhealthy
		case Degraded:
			state = Degraded
		}
	}
	return state
}

package core

import (
	"context"
	"time"
)

// Engine is the capability every analysis engine implements. Engines are the
// independent domain-scoped processing units the orchestrator fans out to.
//
// Implementations must:
//   - Respect context cancellation on their outbound completion calls
//   - Never return an error or panic on malformed model output; parse
//     failures degrade to the engine's documented default payload with
//     Degraded set on the result
//   - Be safe for concurrent use (one Analyze call per request branch)
type Engine interface {
	Name() string
	Analyze(ctx context.Context, userID string, data HealthData, hc *HealthContext) EngineResult
}

// EngineResult is the ephemeral output of one engine for one request. It is
// consumed only by the orchestrator within the same request and never
// persisted on its own. Payload holds the engine's typed payload
// (BioenergeticPayload, PatternPayload, PersonalizationPayload or a custom
// type for user-supplied engines).
type EngineResult struct {
	EngineName     string
	Payload        any
	Confidence     float64
	ProcessingTime time.Duration
	Degraded       bool
}

// BioenergeticPayload is the bioenergetic/metabolic engine output. Score is
// the engine's 0–100 metabolic health estimate.
type BioenergeticPayload struct {
	Score           float64  `json:"score"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

// Pattern is a recurring structure the pattern engine identified across the
// user's data and history.
type Pattern struct {
	Name         string  `json:"name"`
	Significance string  `json:"significance"` // low, moderate, high
	Confidence   float64 `json:"confidence"`
	Positive     bool    `json:"positive"`
}

// Trend is a direction over time for a single metric.
type Trend struct {
	Metric    string `json:"metric"`
	Direction string `json:"direction"` // improving, declining, stable
}

// Anomaly is a data point the pattern engine flagged as out of band.
type Anomaly struct {
	Metric      string `json:"metric"`
	Severity    string `json:"severity"` // minor, moderate, critical
	Description string `json:"description,omitempty"`
}

// PatternPayload is the pattern/trend engine output.
type PatternPayload struct {
	Patterns        []Pattern `json:"patterns"`
	Trends          []Trend   `json:"trends"`
	Anomalies       []Anomaly `json:"anomalies"`
	Recommendations []string  `json:"recommendations"`
}

// PersonalizationPayload is the personalization engine output: a plan
// tailored to the user plus the engine's confidence in it.
type PersonalizationPayload struct {
	Confidence      float64  `json:"confidence"`
	Plan            []string `json:"plan"`
	Recommendations []string `json:"recommendations"`
}

package core

import "time"

// RiskLevel buckets the overall risk of a result. The zero value is not a
// valid level; absence is represented by the empty string and mapped to a
// neutral default by the scorer.
type RiskLevel string

// Risk levels ordered from least to most severe.
const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Valid reports whether the level is one of the four defined buckets.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// SynthesizedInsight is one merged, scored insight produced by the synthesis
// step from all engine outputs plus the memory context. Derived, not
// independently persisted except as part of the final artifact.
type SynthesizedInsight struct {
	ID                 string   `json:"id"`
	Category           string   `json:"category"` // metabolic, pattern, personalization, risk
	Insight            string   `json:"insight"`
	Confidence         float64  `json:"confidence"`
	Priority           int      `json:"priority"`
	SupportingEvidence []string `json:"supportingEvidence"`
	Recommendations    []string `json:"recommendations"`
	Timeframe          string   `json:"timeframe,omitempty"`
}

// RiskFactor is a single contributor to overall risk.
type RiskFactor struct {
	Factor     string `json:"factor"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Modifiable bool   `json:"modifiable"`
}

// ProtectiveFactor is a single protective contributor.
type ProtectiveFactor struct {
	Factor       string `json:"factor"`
	Strength     string `json:"strength"`
	Category     string `json:"category"`
	Maintainable bool   `json:"maintainable"`
}

// RiskAssessment aggregates the risk view over one analysis.
type RiskAssessment struct {
	OverallRisk            RiskLevel          `json:"overallRisk"`
	RiskFactors            []RiskFactor       `json:"riskFactors"`
	ProtectiveFactors      []ProtectiveFactor `json:"protectiveFactors"`
	InterventionPriorities []string           `json:"interventionPriorities"`
	MonitoringRequirements []string           `json:"monitoringRequirements"`
}

// DefaultRiskAssessment is the documented fallback when the risk synthesis
// call fails or returns malformed output: moderate risk, empty lists.
func DefaultRiskAssessment() RiskAssessment {
	return RiskAssessment{
		OverallRisk:            RiskModerate,
		RiskFactors:            []RiskFactor{},
		ProtectiveFactors:      []ProtectiveFactor{},
		InterventionPriorities: []string{},
		MonitoringRequirements: []string{},
	}
}

// FollowUpItem pairs an action with its target timeframe.
type FollowUpItem struct {
	Action    string `json:"action"`
	Timeframe string `json:"timeframe"`
}

// FollowUpSchedule groups follow-up actions by horizon.
type FollowUpSchedule struct {
	Immediate []FollowUpItem `json:"immediate"`
	ShortTerm []FollowUpItem `json:"shortTerm"`
	LongTerm  []FollowUpItem `json:"longTerm"`
}

// AdvancedHealthInsights is the final artifact returned to the caller and
// appended to the session's memory log. Created once per analysis call;
// never deleted by this subsystem (retention is a session manager concern).
type AdvancedHealthInsights struct {
	ID                      string               `json:"id"`
	UserID                  string               `json:"userId"`
	SessionID               string               `json:"sessionId"`
	GeneratedAt             time.Time            `json:"generatedAt"`
	OverallHealthScore      float64              `json:"overallHealthScore"` // 0–100
	ConfidenceScore         float64              `json:"confidenceScore"`    // (0,1]
	Insights                []SynthesizedInsight `json:"insights"`
	RiskAssessment          RiskAssessment       `json:"riskAssessment"`
	PriorityRecommendations []string             `json:"priorityRecommendations"`
	ImmediateActions        []string             `json:"immediateActions"`
	FollowUpSchedule        FollowUpSchedule     `json:"followUpSchedule"`
	ProcessingTime          time.Duration        `json:"processingTime"`
}

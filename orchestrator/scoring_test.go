package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labinsight/insightmesh/core"
)

func TestOverallHealthScore_AllAbsentIsNeutral(t *testing.T) {
	assert.Equal(t, 50.0, overallHealthScore(nil, nil, nil))
}

func TestOverallHealthScore_WeightsSubScores(t *testing.T) {
	bio := &core.BioenergeticPayload{Score: 80, RiskLevel: core.RiskLow}
	pattern := &core.PatternPayload{} // baseline 70
	personalization := &core.PersonalizationPayload{Confidence: 0.5}

	// 80*0.4 + 70*0.3 + 50*0.2 + 90*0.1
	assert.InDelta(t, 72.0, overallHealthScore(bio, pattern, personalization), 0.001)
}

func TestOverallHealthScore_ClampsOutOfRangeInputs(t *testing.T) {
	bio := &core.BioenergeticPayload{Score: 250, RiskLevel: core.RiskLow}
	personalization := &core.PersonalizationPayload{Confidence: 3}

	score := overallHealthScore(bio, nil, personalization)
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
	// 100*0.4 + 50*0.3 + 100*0.2 + 90*0.1
	assert.InDelta(t, 84.0, score, 0.001)
}

func TestOverallHealthScore_AlwaysInRange(t *testing.T) {
	payloads := []*core.BioenergeticPayload{
		nil,
		{Score: -40, RiskLevel: core.RiskCritical},
		{Score: 500},
		{Score: 0, RiskLevel: "bogus"},
	}
	patterns := []*core.PatternPayload{
		nil,
		{Anomalies: make([]core.Anomaly, 20)},
	}
	for _, bio := range payloads {
		for _, pattern := range patterns {
			if pattern != nil {
				for i := range pattern.Anomalies {
					pattern.Anomalies[i].Severity = "critical"
				}
			}
			score := overallHealthScore(bio, pattern, nil)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
}

func TestPatternScore(t *testing.T) {
	payload := core.PatternPayload{
		Patterns: []core.Pattern{
			{Name: "steady meals", Significance: "high", Confidence: 0.9, Positive: true}, // +5
			{Name: "weak signal", Significance: "low", Confidence: 0.9, Positive: true},   // ignored
			{Name: "uncertain", Significance: "high", Confidence: 0.3, Positive: true},    // ignored
		},
		Trends: []core.Trend{
			{Metric: "pulseRate", Direction: "improving"}, // +3
			{Metric: "weight", Direction: "stable"},       // ignored
		},
		Anomalies: []core.Anomaly{
			{Metric: "bodyTemperature", Severity: "moderate"}, // -8
			{Metric: "glucose", Severity: "minor"},            // ignored
		},
	}
	assert.InDelta(t, 70.0, patternScore(payload), 0.001)
}

func TestPatternScore_Clamps(t *testing.T) {
	anomalies := make([]core.Anomaly, 12)
	for i := range anomalies {
		anomalies[i].Severity = "critical"
	}
	assert.Equal(t, 0.0, patternScore(core.PatternPayload{Anomalies: anomalies}))
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		level core.RiskLevel
		want  float64
	}{
		{core.RiskLow, 90},
		{core.RiskModerate, 70},
		{core.RiskHigh, 40},
		{core.RiskCritical, 20},
		{"", 50},
		{"unknown", 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskScore(tt.level), "level %q", tt.level)
	}
}

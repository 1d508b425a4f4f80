package orchestrator

import "github.com/labinsight/insightmesh/core"

// neutralScore stands in for any sub-score whose engine degraded or whose
// input is absent.
const neutralScore = 50

// Sub-score weights. They sum to 1 so the composite stays in [0,100].
const (
	weightBioenergetic    = 0.4
	weightPattern         = 0.3
	weightPersonalization = 0.2
	weightRisk            = 0.1
)

// overallHealthScore combines the engine sub-scores into the composite 0-100
// score. Each sub-score is clamped independently before weighting; a nil
// payload contributes the neutral score.
func overallHealthScore(bio *core.BioenergeticPayload, pattern *core.PatternPayload, personalization *core.PersonalizationPayload) float64 {
	bioScore := float64(neutralScore)
	riskLevel := core.RiskLevel("")
	if bio != nil {
		bioScore = clamp(bio.Score, 0, 100)
		riskLevel = bio.RiskLevel
	}

	patScore := float64(neutralScore)
	if pattern != nil {
		patScore = patternScore(*pattern)
	}

	persScore := float64(neutralScore)
	if personalization != nil {
		persScore = clamp(personalization.Confidence*100, 0, 100)
	}

	composite := bioScore*weightBioenergetic +
		patScore*weightPattern +
		persScore*weightPersonalization +
		riskScore(riskLevel)*weightRisk
	return clamp(composite, 0, 100)
}

// patternScore derives a 0-100 score from the pattern engine output. It
// starts at a 70 baseline, credits confident positive patterns and improving
// trends, and debits anomalies of at least moderate severity.
func patternScore(p core.PatternPayload) float64 {
	score := 70.0
	for _, pat := range p.Patterns {
		if pat.Positive && pat.Significance == "high" && pat.Confidence >= 0.7 {
			score += 5
		}
	}
	for _, trend := range p.Trends {
		if trend.Direction == "improving" {
			score += 3
		}
	}
	for _, anomaly := range p.Anomalies {
		if anomaly.Severity == "moderate" || anomaly.Severity == "critical" {
			score -= 8
		}
	}
	return clamp(score, 0, 100)
}

// riskScore maps a categorical risk level onto the 0-100 scale; an absent or
// unrecognized level maps to neutral.
func riskScore(level core.RiskLevel) float64 {
	switch level {
	case core.RiskLow:
		return 90
	case core.RiskModerate:
		return 70
	case core.RiskHigh:
		return 40
	case core.RiskCritical:
		return 20
	}
	return neutralScore
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

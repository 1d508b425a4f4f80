package engines

import (
	"context"
	"time"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/model"
)

// PatternName identifies the pattern engine in results and logs.
const PatternName = "pattern"

const patternInstructions = `You are a health pattern analyst. Identify recurring patterns, metric trends
and anomalies across the current data and the prior history supplied. Reply
with ONLY a JSON object:
{"patterns": [{"name": "...", "significance": "low|moderate|high", "confidence": <0-1>, "positive": true|false}],
"trends": [{"metric": "...", "direction": "improving|declining|stable"}],
"anomalies": [{"metric": "...", "severity": "minor|moderate|critical", "description": "..."}],
"recommendations": ["..."]}`

// Pattern detects recurring structures, metric trends and anomalies across
// the submitted data and memory context. Its degraded payload has empty
// lists.
type Pattern struct {
	BaseEngine
}

// NewPattern constructs the pattern engine over m.
func NewPattern(m model.Model, optFns ...func(o *Options)) *Pattern {
	return &Pattern{BaseEngine: newBase(PatternName, m, optFns...)}
}

// Analyze implements core.Engine.
func (e *Pattern) Analyze(ctx context.Context, userID string, data core.HealthData, hc *core.HealthContext) core.EngineResult {
	start := time.Now()
	result := core.EngineResult{EngineName: e.name}

	text, _, err := e.complete(ctx, patternInstructions, e.prompt(userID, data, hc))
	if err != nil {
		result.Payload = core.PatternPayload{}
		result.Degraded = true
		result.ProcessingTime = time.Since(start)
		return result
	}

	payload, parsed := decodePayload[core.PatternPayload](text)
	if !parsed {
		e.logger.Warn("pattern payload malformed, degrading", "engine", e.name)
		payload = core.PatternPayload{Recommendations: extractRecommendations(text)}
		result.Degraded = true
	}
	for i := range payload.Patterns {
		payload.Patterns[i].Confidence = clamp(payload.Patterns[i].Confidence, 0, 1)
	}

	result.Payload = payload
	result.Confidence = engineConfidence(result.Degraded)
	result.ProcessingTime = time.Since(start)
	return result
}

func (e *Pattern) prompt(userID string, data core.HealthData, hc *core.HealthContext) string {
	body := "Current health data for user " + userID + ":\n" + formatHealthData(data)
	if contextText := formatContext(hc); contextText != "" {
		body += "\nPrior sessions:\n" + contextText
	} else {
		body += "\nNo prior history is available; limit findings to the current data.\n"
	}
	return body
}

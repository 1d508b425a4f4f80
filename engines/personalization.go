package engines

import (
	"context"
	"time"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/model"
)

// PersonalizationName identifies the personalization engine in results and
// logs.
const PersonalizationName = "personalization"

// DefaultPersonalizationConfidence is used when the model omits its own
// confidence estimate.
const DefaultPersonalizationConfidence = 0.8

const personalizationInstructions = `You build personalized health optimization plans. Tailor the plan to the
user's stated preferences, goals and history. Reply with ONLY a JSON object:
{"confidence": <0-1>, "plan": ["ordered plan steps"], "recommendations": ["..."]}`

// Personalization produces a plan tailored to the user's preferences and
// goals. Its degraded payload is an empty plan with the default confidence.
type Personalization struct {
	BaseEngine
}

// NewPersonalization constructs the personalization engine over m.
func NewPersonalization(m model.Model, optFns ...func(o *Options)) *Personalization {
	return &Personalization{BaseEngine: newBase(PersonalizationName, m, optFns...)}
}

// Analyze implements core.Engine.
func (e *Personalization) Analyze(ctx context.Context, userID string, data core.HealthData, hc *core.HealthContext) core.EngineResult {
	start := time.Now()
	result := core.EngineResult{EngineName: e.name}

	text, _, err := e.complete(ctx, personalizationInstructions, e.prompt(userID, data, hc))
	if err != nil {
		result.Payload = core.PersonalizationPayload{Confidence: DefaultPersonalizationConfidence}
		result.Confidence = DefaultPersonalizationConfidence
		result.Degraded = true
		result.ProcessingTime = time.Since(start)
		return result
	}

	payload, parsed := decodePayload[core.PersonalizationPayload](text)
	if !parsed {
		e.logger.Warn("personalization payload malformed, degrading", "engine", e.name)
		payload = core.PersonalizationPayload{Recommendations: extractRecommendations(text)}
		result.Degraded = true
	}
	if payload.Confidence <= 0 {
		payload.Confidence = DefaultPersonalizationConfidence
	}
	payload.Confidence = clamp(payload.Confidence, 0, 1)

	result.Payload = payload
	result.Confidence = payload.Confidence
	result.ProcessingTime = time.Since(start)
	return result
}

func (e *Personalization) prompt(userID string, data core.HealthData, hc *core.HealthContext) string {
	body := "Health data for user " + userID + ":\n" + formatHealthData(data)
	if contextText := formatContext(hc); contextText != "" {
		body += "\nWhat we know about this user:\n" + contextText
	} else {
		body += "\nNo stored preferences or goals; produce a generally applicable starter plan.\n"
	}
	return body
}

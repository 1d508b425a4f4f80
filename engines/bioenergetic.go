package engines

import (
	"context"
	"time"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/model"
)

// BioenergeticName identifies the bioenergetic engine in results and logs.
const BioenergeticName = "bioenergetic"

const bioenergeticInstructions = `You are a bioenergetic health analyst working from the metabolic model:
low waking body temperature (below 97.8F) and low resting pulse (below 75 bpm)
indicate a suppressed metabolic rate, often thyroid-related. Assess the data
and reply with ONLY a JSON object:
{"score": <0-100 metabolic health score>, "riskLevel": "low|moderate|high|critical",
"findings": ["..."], "recommendations": ["..."]}`

// Bioenergetic assesses metabolic function from vitals, biomarkers and
// symptoms. Its degraded payload is empty with a zero score; the orchestrator
// substitutes a neutral sub-score for degraded results.
type Bioenergetic struct {
	BaseEngine
}

// NewBioenergetic constructs the bioenergetic engine over m.
func NewBioenergetic(m model.Model, optFns ...func(o *Options)) *Bioenergetic {
	return &Bioenergetic{BaseEngine: newBase(BioenergeticName, m, optFns...)}
}

// Analyze implements core.Engine.
func (e *Bioenergetic) Analyze(ctx context.Context, userID string, data core.HealthData, hc *core.HealthContext) core.EngineResult {
	start := time.Now()
	result := core.EngineResult{EngineName: e.name}

	text, _, err := e.complete(ctx, bioenergeticInstructions, e.prompt(userID, data, hc))
	if err != nil {
		result.Payload = core.BioenergeticPayload{}
		result.Degraded = true
		result.ProcessingTime = time.Since(start)
		return result
	}

	payload, parsed := decodePayload[core.BioenergeticPayload](text)
	if !parsed {
		e.logger.Warn("bioenergetic payload malformed, degrading", "engine", e.name)
		payload = core.BioenergeticPayload{Recommendations: extractRecommendations(text)}
		result.Degraded = true
	}
	payload.Score = clamp(payload.Score, 0, 100)
	if !payload.RiskLevel.Valid() {
		payload.RiskLevel = ""
	}

	result.Payload = payload
	result.Confidence = engineConfidence(result.Degraded)
	result.ProcessingTime = time.Since(start)
	return result
}

func (e *Bioenergetic) prompt(userID string, data core.HealthData, hc *core.HealthContext) string {
	body := "Health data for user " + userID + ":\n" + formatHealthData(data)
	if contextText := formatContext(hc); contextText != "" {
		body += "\nContext from prior sessions:\n" + contextText
	}
	if !data.HasVitals() {
		body += "\nNote: no temperature or pulse supplied; weight biomarkers and symptoms accordingly.\n"
	}
	return body
}

// engineConfidence is the reported confidence for engines that do not carry
// their own: 0.8 for a clean parse, 0.3 when degraded.
func engineConfidence(degraded bool) float64 {
	if degraded {
		return 0.3
	}
	return 0.8
}

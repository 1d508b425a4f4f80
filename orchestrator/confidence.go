package orchestrator

import (
	"time"

	"github.com/labinsight/insightmesh/core"
)

// Confidence signal thresholds.
const (
	fastEngineLatency   = 5 * time.Second
	richPatternCount    = 3
	richContextSignals  = 2
	confidenceStrong    = 0.9
	confidenceWeak      = 0.7
	defaultPersonalConf = 0.8
)

// confidenceScore averages four independent signals into the artifact's
// (0,1] confidence: engine latency, pattern richness, personalization
// confidence and memory-context richness.
func confidenceScore(results []core.EngineResult, pattern *core.PatternPayload, personalization *core.PersonalizationPayload, hc *core.HealthContext) float64 {
	latency := confidenceStrong
	for _, res := range results {
		if res.ProcessingTime >= fastEngineLatency {
			latency = confidenceWeak
			break
		}
	}

	patterns := confidenceWeak
	if pattern != nil && len(pattern.Patterns) > richPatternCount {
		patterns = confidenceStrong
	}

	personal := defaultPersonalConf
	if personalization != nil && personalization.Confidence > 0 {
		personal = clamp(personalization.Confidence, 0, 1)
	}

	context := confidenceWeak
	if hc != nil && hc.Richness() > richContextSignals {
		context = confidenceStrong
	}

	return (latency + patterns + personal + context) / 4
}

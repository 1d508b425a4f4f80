package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/model"
)

const synthesisInstructions = `You synthesize multi-engine health analysis results into ranked insights.
Merge, do not repeat: each insight should combine evidence across engines.
Reply with ONLY a JSON object:
{"insights": [{"category": "metabolic|pattern|personalization|risk", "insight": "...",
"confidence": <0-1>, "priority": <1-10>, "supportingEvidence": ["..."],
"recommendations": ["..."], "timeframe": "..."}]}`

const riskInstructions = `You assess overall health risk from analysis results.
Reply with ONLY a JSON object:
{"overallRisk": "low|moderate|high|critical",
"riskFactors": [{"factor": "...", "severity": "...", "category": "...", "modifiable": true|false}],
"protectiveFactors": [{"factor": "...", "strength": "...", "category": "...", "maintainable": true|false}],
"interventionPriorities": ["..."], "monitoringRequirements": ["..."]}`

type insightEnvelope struct {
	Insights []core.SynthesizedInsight `json:"insights"`
}

// synthesizeInsights merges the engine results, the personalized plan and
// the memory context into ranked insights via one completion call. Failures
// and malformed replies fall back to an empty list.
func (o *Orchestrator) synthesizeInsights(ctx context.Context, results []core.EngineResult, hc *core.HealthContext) []core.SynthesizedInsight {
	resp, err := o.model.Complete(ctx, model.Request{
		Instructions: synthesisInstructions,
		Prompt:       o.synthesisPrompt(results, hc),
	})
	if err != nil {
		o.logger.Warn("insight synthesis failed, returning empty list", "error", err)
		return []core.SynthesizedInsight{}
	}

	envelope, parsed := decodeReply[insightEnvelope](resp.Text)
	if !parsed {
		o.logger.Warn("insight synthesis reply malformed, returning empty list")
		return []core.SynthesizedInsight{}
	}

	insights := envelope.Insights
	for i := range insights {
		if insights[i].ID == "" {
			insights[i].ID = uuid.NewString()
		}
		insights[i].Category = strings.ToLower(strings.TrimSpace(insights[i].Category))
		insights[i].Confidence = clamp(insights[i].Confidence, 0, 1)
		if insights[i].SupportingEvidence == nil {
			insights[i].SupportingEvidence = []string{}
		}
		if insights[i].Recommendations == nil {
			insights[i].Recommendations = []string{}
		}
	}
	if insights == nil {
		insights = []core.SynthesizedInsight{}
	}
	return insights
}

// assessRisk runs the risk synthesis call over the engine results and the
// synthesized insights. Failures and malformed replies fall back to the
// documented moderate default.
func (o *Orchestrator) assessRisk(ctx context.Context, results []core.EngineResult, insights []core.SynthesizedInsight) core.RiskAssessment {
	var sb strings.Builder
	sb.WriteString("Engine results:\n")
	writeEngineResults(&sb, results)
	if len(insights) > 0 {
		sb.WriteString("\nSynthesized insights:\n")
		for _, insight := range insights {
			fmt.Fprintf(&sb, "- [%s] %s\n", insight.Category, insight.Insight)
		}
	}

	resp, err := o.model.Complete(ctx, model.Request{
		Instructions: riskInstructions,
		Prompt:       sb.String(),
	})
	if err != nil {
		o.logger.Warn("risk assessment failed, using moderate default", "error", err)
		return core.DefaultRiskAssessment()
	}

	assessment, parsed := decodeReply[core.RiskAssessment](resp.Text)
	if !parsed || !assessment.OverallRisk.Valid() {
		o.logger.Warn("risk assessment reply malformed, using moderate default")
		return core.DefaultRiskAssessment()
	}
	if assessment.RiskFactors == nil {
		assessment.RiskFactors = []core.RiskFactor{}
	}
	if assessment.ProtectiveFactors == nil {
		assessment.ProtectiveFactors = []core.ProtectiveFactor{}
	}
	if assessment.InterventionPriorities == nil {
		assessment.InterventionPriorities = []string{}
	}
	if assessment.MonitoringRequirements == nil {
		assessment.MonitoringRequirements = []string{}
	}
	return assessment
}

func (o *Orchestrator) synthesisPrompt(results []core.EngineResult, hc *core.HealthContext) string {
	var sb strings.Builder
	sb.WriteString("Partial analysis results to synthesize:\n")
	writeEngineResults(&sb, results)

	if hc != nil {
		if hc.ConversationSummary != "" {
			fmt.Fprintf(&sb, "\nHistory summary: %s\n", hc.ConversationSummary)
		}
		if len(hc.HealthGoals) > 0 {
			sb.WriteString("User goals:\n")
			for _, rec := range hc.HealthGoals {
				fmt.Fprintf(&sb, "- %s\n", rec.Content)
			}
		}
	}
	return sb.String()
}

func writeEngineResults(sb *strings.Builder, results []core.EngineResult) {
	for _, res := range results {
		if res.Degraded {
			fmt.Fprintf(sb, "%s: unavailable (degraded)\n", res.EngineName)
			continue
		}
		payload, err := json.Marshal(res.Payload)
		if err != nil {
			continue
		}
		fmt.Fprintf(sb, "%s: %s\n", res.EngineName, payload)
	}
}

// decodeReply parses a completion reply into T, tolerating markdown fences
// and surrounding prose. Failure returns the zero value and false.
func decodeReply[T any](text string) (T, bool) {
	var out T

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return out, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

package engines

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/model"
)

// Options configures a built-in engine.
type Options struct {
	// Logger receives parse and completion warnings.
	Logger logging.Logger
}

// BaseEngine carries the completion mechanics shared by the built-in
// engines: model invocation, latency measurement and warning logs.
type BaseEngine struct {
	name   string
	model  model.Model
	logger logging.Logger
}

func newBase(name string, m model.Model, optFns ...func(o *Options)) BaseEngine {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return BaseEngine{name: name, model: m, logger: opts.Logger}
}

// Name implements core.Engine.
func (b *BaseEngine) Name() string { return b.name }

// complete issues one model call and returns the reply text with the
// observed latency.
func (b *BaseEngine) complete(ctx context.Context, instructions, prompt string) (string, time.Duration, error) {
	start := time.Now()
	resp, err := b.model.Complete(ctx, model.Request{Instructions: instructions, Prompt: prompt})
	elapsed := time.Since(start)
	if il, isInsight := b.logger.(*logging.InsightLogger); isInsight {
		il.LogEngineCall(b.name, elapsed, err != nil)
	}
	if err != nil {
		b.logger.Warn("engine completion failed", "engine", b.name, "error", err)
		return "", elapsed, err
	}
	return resp.Text, elapsed, nil
}

// decodePayload parses a model reply into the engine's typed payload. It
// tolerates markdown code fences and leading prose around the JSON object.
// Failure returns the zero payload and false, never an error.
func decodePayload[T any](text string) (T, bool) {
	var payload T

	cleaned := stripFences(text)
	start := strings.IndexByte(cleaned, '{')
	end := strings.LastIndexByte(cleaned, '}')
	if start < 0 || end <= start {
		return payload, false
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &payload); err != nil {
		var zero T
		return zero, false
	}
	return payload, true
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// extractRecommendations salvages recommendation bullets from
// semi-structured model text when JSON decoding failed. It collects lines
// shaped like list items plus lines that mention recommending, capped at 10.
func extractRecommendations(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		trimmed := trimBullet(line)
		isBullet := trimmed != line
		if trimmed == "" {
			continue
		}
		if isBullet || strings.Contains(strings.ToLower(trimmed), "recommend") {
			out = append(out, trimmed)
			if len(out) == 10 {
				break
			}
		}
	}
	return out
}

func trimBullet(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	// Numbered items: "1. ", "2) "
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '.' || r == ')') && strings.HasPrefix(line[i+1:], " ") {
			return strings.TrimSpace(line[i+2:])
		}
		break
	}
	return line
}

// formatHealthData renders the submitted metrics for a prompt. Absent fields
// are omitted rather than shown as zero so the model does not read missing
// data as abnormal readings.
func formatHealthData(data core.HealthData) string {
	var sb strings.Builder
	if data.BodyTemperature > 0 {
		fmt.Fprintf(&sb, "Body temperature: %.1f F (waking oral)\n", data.BodyTemperature)
	}
	if data.PulseRate > 0 {
		fmt.Fprintf(&sb, "Resting pulse: %.0f bpm\n", data.PulseRate)
	}
	if len(data.Biomarkers) > 0 {
		names := make([]string, 0, len(data.Biomarkers))
		for name := range data.Biomarkers {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("Biomarkers:\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s: %g\n", name, data.Biomarkers[name])
		}
	}
	if data.Diet != "" {
		fmt.Fprintf(&sb, "Diet: %s\n", data.Diet)
	}
	if len(data.Symptoms) > 0 {
		fmt.Fprintf(&sb, "Symptoms: %s\n", strings.Join(data.Symptoms, ", "))
	}
	if len(data.Medications) > 0 {
		fmt.Fprintf(&sb, "Medications: %s\n", strings.Join(data.Medications, ", "))
	}
	if data.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", data.Notes)
	}
	if sb.Len() == 0 {
		return "No health data provided.\n"
	}
	return sb.String()
}

// formatContext renders the memory context for a prompt: preferences, goals,
// a short window of relevant history and the conversation summary when the
// assembler produced one.
func formatContext(hc *core.HealthContext) string {
	if hc == nil {
		return ""
	}

	var sb strings.Builder
	if len(hc.UserPreferences) > 0 {
		if b, err := json.Marshal(hc.UserPreferences); err == nil {
			fmt.Fprintf(&sb, "User preferences: %s\n", b)
		}
	}
	if len(hc.HealthGoals) > 0 {
		sb.WriteString("Health goals:\n")
		for _, rec := range hc.HealthGoals {
			fmt.Fprintf(&sb, "  - %s\n", preview(rec.Content))
		}
	}
	if hc.ConversationSummary != "" {
		fmt.Fprintf(&sb, "History summary: %s\n", hc.ConversationSummary)
	}
	if len(hc.RelevantHistory) > 0 {
		sb.WriteString("Relevant history:\n")
		history := hc.RelevantHistory
		if len(history) > 3 {
			history = history[:3]
		}
		for _, rec := range history {
			fmt.Fprintf(&sb, "  - [%s] %s\n", rec.Role, preview(rec.Content))
		}
	}
	return sb.String()
}

func preview(content string) string {
	const maxLen = 150
	if len(content) > maxLen {
		return content[:maxLen] + "..."
	}
	return content
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

package testutil

import (
	"fmt"

	"github.com/labinsight/insightmesh/core"
)

// HealthDataBuilder constructs HealthData fixtures with fluent chaining.
// Example:
//
//	data := NewHealthDataBuilder().Vitals(97.2, 65).Symptoms("fatigue").Build()
type HealthDataBuilder struct {
	data core.HealthData
}

// NewHealthDataBuilder creates an empty builder. Use chainable methods then
// call Build.
func NewHealthDataBuilder() *HealthDataBuilder {
	return &HealthDataBuilder{}
}

// Vitals sets body temperature and pulse rate (chainable).
func (b *HealthDataBuilder) Vitals(temperature, pulse float64) *HealthDataBuilder {
	b.data.BodyTemperature = temperature
	b.data.PulseRate = pulse
	return b
}

// Biomarker sets a single lab value (chainable).
func (b *HealthDataBuilder) Biomarker(name string, value float64) *HealthDataBuilder {
	if b.data.Biomarkers == nil {
		b.data.Biomarkers = map[string]float64{}
	}
	b.data.Biomarkers[name] = value
	return b
}

// Diet sets the diet description (chainable).
func (b *HealthDataBuilder) Diet(diet string) *HealthDataBuilder {
	b.data.Diet = diet
	return b
}

// Symptoms appends symptoms (chainable).
func (b *HealthDataBuilder) Symptoms(symptoms ...string) *HealthDataBuilder {
	b.data.Symptoms = append(b.data.Symptoms, symptoms...)
	return b
}

// Notes sets free-form notes (chainable).
func (b *HealthDataBuilder) Notes(notes string) *HealthDataBuilder {
	b.data.Notes = notes
	return b
}

// Build returns the assembled HealthData.
func (b *HealthDataBuilder) Build() core.HealthData {
	return b.data
}

// LowMetabolicData is the canonical hypometabolic fixture: low waking
// temperature, low pulse, low-carbohydrate diet and classic symptoms.
func LowMetabolicData() core.HealthData {
	return NewHealthDataBuilder().
		Vitals(97.2, 65).
		Diet("low-carbohydrate").
		Symptoms("fatigue", "cold hands and feet").
		Build()
}

// BioenergeticReply renders a canned bioenergetic engine completion.
func BioenergeticReply(score float64, risk core.RiskLevel, recommendations ...string) string {
	return fmt.Sprintf(`{"score": %g, "riskLevel": %q, "findings": [], "recommendations": %s}`,
		score, risk, quoteList(recommendations))
}

// PersonalizationReply renders a canned personalization engine completion.
func PersonalizationReply(confidence float64, recommendations ...string) string {
	return fmt.Sprintf(`{"confidence": %g, "plan": [], "recommendations": %s}`,
		confidence, quoteList(recommendations))
}

func quoteList(items []string) string {
	out := "["
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%q", item)
	}
	return out + "]"
}

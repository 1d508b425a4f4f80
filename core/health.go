package core

// HealthData is the biomarker/symptom payload submitted by a caller for one
// analysis request. All fields are optional; engines treat absent values as
// unknown rather than abnormal. Biomarkers holds arbitrary lab values keyed
// by marker name (e.g. "TSH", "fastingGlucose") in the caller's units.
type HealthData struct {
	BodyTemperature float64            `json:"bodyTemperature,omitempty"` // degrees Fahrenheit, waking oral
	PulseRate       float64            `json:"pulseRate,omitempty"`       // beats per minute, resting
	Biomarkers      map[string]float64 `json:"biomarkers,omitempty"`
	Diet            string             `json:"diet,omitempty"`
	Symptoms        []string           `json:"symptoms,omitempty"`
	Medications     []string           `json:"medications,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

// HasVitals reports whether at least one of the two primary metabolic
// vitals (temperature, pulse) was supplied.
func (d HealthData) HasVitals() bool {
	return d.BodyTemperature > 0 || d.PulseRate > 0
}

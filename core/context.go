package core

import "encoding/json"

// HealthContext is the bounded, read-time projection over a user's memory
// assembled fresh for each analysis request. It is never persisted as-is.
//
// Invariant: the serialized size stays within the assembler's configured
// budget. When the raw assembly exceeds it, RelevantHistory is truncated to
// a small head and ConversationSummary is populated instead; full history
// and a summary are never both delivered at full size.
type HealthContext struct {
	UserID              string         `json:"userId"`
	SessionID           string         `json:"sessionId"`
	UserPreferences     map[string]any `json:"userPreferences"`
	RecentAnalyses      []MemoryRecord `json:"recentAnalyses"`
	HealthGoals         []MemoryRecord `json:"healthGoals"`
	RelevantHistory     []MemoryRecord `json:"relevantHistory"`
	ConversationSummary string         `json:"conversationSummary,omitempty"`
}

// NewHealthContext returns an empty context for the given identifiers. All
// collection fields are non-nil so a degraded assembly still serializes to a
// complete, well-typed object.
func NewHealthContext(userID, sessionID string) *HealthContext {
	return &HealthContext{
		UserID:          userID,
		SessionID:       sessionID,
		UserPreferences: map[string]any{},
		RecentAnalyses:  []MemoryRecord{},
		HealthGoals:     []MemoryRecord{},
		RelevantHistory: []MemoryRecord{},
	}
}

// Size returns the serialized size of the context in bytes, the unit the
// assembler's budget is expressed in.
func (hc *HealthContext) Size() int {
	b, err := json.Marshal(hc)
	if err != nil {
		return 0
	}
	return len(b)
}

// Richness counts the contextual signals available to downstream consumers,
// used as one of the synthesis confidence inputs.
func (hc *HealthContext) Richness() int {
	n := len(hc.RecentAnalyses) + len(hc.HealthGoals) + len(hc.RelevantHistory)
	if len(hc.UserPreferences) > 0 {
		n++
	}
	if hc.ConversationSummary != "" {
		n++
	}
	return n
}

package core

import (
	"context"
	"time"
)

// Message is a single memory entry to be appended to a session's log.
// Role follows the conversational convention ("user", "assistant", "system").
type Message struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MemoryRecord is an immutable, append-only memory entry as returned by the
// memory service. Score is populated only on search results (semantic
// relevance, 0–1); superseded facts are represented as new records, never
// edits.
type MemoryRecord struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Score     float64        `json:"score,omitempty"`
}

// SearchQuery describes a relevance search over a session's memory. Metadata
// constraints, when present, must all match a record's metadata for it to be
// returned (string equality on the stored values).
type SearchQuery struct {
	Text     string            `json:"text"`
	Limit    int               `json:"limit"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MemoryService is the external session-scoped memory/vector store this
// subsystem depends on. Implementations may back search with embeddings,
// keywords or any heuristic.
//
// All methods may fail; callers are expected to go through the fail-open
// memory.Client rather than invoking a service directly.
type MemoryService interface {
	// AddMemory appends messages to a session's log. The log is append-only;
	// there is nothing to roll back on partial failure.
	AddMemory(ctx context.Context, sessionID string, messages []Message) error

	// SearchMemory runs a relevance search over a session's records.
	SearchMemory(ctx context.Context, sessionID string, query SearchQuery) ([]MemoryRecord, error)

	// GetSummary returns the service-side running summary for a session
	// (empty string when none exists).
	GetSummary(ctx context.Context, sessionID string) (string, error)

	// CreateSession persists a session record.
	CreateSession(ctx context.Context, session *Session) error

	// GetSessions returns sessions whose metadata userId matches, most
	// recently active first, up to limit (0 = no limit).
	GetSessions(ctx context.Context, userID string, limit int) ([]*Session, error)

	// UpdateSession replaces a session's metadata and activity timestamp.
	UpdateSession(ctx context.Context, session *Session) error

	// DeleteSession removes a session and all of its records.
	DeleteSession(ctx context.Context, sessionID string) error
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labinsight/insightmesh/core"
)

// InMemoryService is a process-local core.MemoryService. It offers:
//  1. Append-only session-scoped message logs with keyword-overlap Search
//  2. Session CRUD backed by plain maps
//
// Concurrency: protected by RWMutex. Search scoring is a token-overlap
// fraction (matched query tokens / query tokens), a stand-in for semantic
// relevance suitable for tests and local development; swap in the chromem
// service or a remote vector store for real retrieval.
type InMemoryService struct {
	mu       sync.RWMutex
	records  map[string][]core.MemoryRecord // sessionID -> append-only log
	sessions map[string]*core.Session       // sessionID -> session
}

// NewInMemoryService creates an empty in-memory service.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		records:  make(map[string][]core.MemoryRecord),
		sessions: make(map[string]*core.Session),
	}
}

// AddMemory appends messages to the session's log. Records are immutable
// once written.
func (s *InMemoryService) AddMemory(_ context.Context, sessionID string, messages []core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range messages {
		md := make(map[string]any, len(msg.Metadata))
		for k, v := range msg.Metadata {
			md[k] = v
		}
		s.records[sessionID] = append(s.records[sessionID], core.MemoryRecord{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      msg.Role,
			Content:   msg.Content,
			Metadata:  md,
			CreatedAt: time.Now(),
		})
	}
	if sess, exists := s.sessions[sessionID]; exists {
		sess.Touch()
	}
	return nil
}

// SearchMemory scores records by query-token overlap and returns the top
// matches, best first.
func (s *InMemoryService) SearchMemory(_ context.Context, sessionID string, query core.SearchQuery) ([]core.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	tokens := strings.Fields(strings.ToLower(query.Text))
	matches := make([]core.MemoryRecord, 0, limit)
	for _, rec := range s.records[sessionID] {
		if !metadataMatches(rec.Metadata, query.Metadata) {
			continue
		}
		score := overlapScore(rec.Content, tokens)
		if len(tokens) > 0 && score == 0 {
			continue
		}
		rec.Score = score
		matches = append(matches, rec)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetSummary returns a naive service-side summary: the most recent record
// contents joined and truncated. Empty when the session has no records.
func (s *InMemoryService) GetSummary(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.records[sessionID]
	if len(log) == 0 {
		return "", nil
	}
	start := len(log) - 3
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, rec := range log[start:] {
		content := rec.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		parts = append(parts, rec.Role+": "+content)
	}
	return strings.Join(parts, "\n"), nil
}

// CreateSession persists a session record, overwriting an existing one with
// the same id.
func (s *InMemoryService) CreateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session.Clone()
	return nil
}

// GetSessions returns the user's sessions most recently active first.
func (s *InMemoryService) GetSessions(_ context.Context, userID string, limit int) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Session
	for _, sess := range s.sessions {
		if sess.Metadata["userId"] == userID {
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateSession replaces an existing session's stored state.
func (s *InMemoryService) UpdateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; !exists {
		return fmt.Errorf("session %s not found", session.SessionID)
	}
	s.sessions[session.SessionID] = session.Clone()
	return nil
}

// DeleteSession removes a session and its records.
func (s *InMemoryService) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		if _, hasRecords := s.records[sessionID]; !hasRecords {
			return fmt.Errorf("session %s not found", sessionID)
		}
	}
	delete(s.sessions, sessionID)
	delete(s.records, sessionID)
	return nil
}

// metadataMatches reports whether all constraints are present in md with
// equal string representations.
func metadataMatches(md map[string]any, constraints map[string]string) bool {
	for k, want := range constraints {
		got, exists := md[k]
		if !exists || fmt.Sprintf("%v", got) != want {
			return false
		}
	}
	return true
}

// overlapScore is the fraction of query tokens found in content.
func overlapScore(content string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 1.0
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

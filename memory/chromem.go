package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/sanitize"
)

// ChromemOptions configures a ChromemService.
type ChromemOptions struct {
	// PersistPath, when set, backs the store with an on-disk database;
	// empty keeps everything in process memory.
	PersistPath string
	// Embedding computes document embeddings. Defaults to the library's
	// default embedding func (OpenAI, OPENAI_API_KEY from the environment).
	Embedding chromem.EmbeddingFunc
}

// ChromemService is a core.MemoryService backed by the embedded chromem-go
// vector store. Each session gets its own collection so deletion is a
// collection drop and searches never cross sessions. Session records
// themselves live in a process-local map: chromem stores documents, not
// session handles.
type ChromemService struct {
	mu       sync.RWMutex
	db       *chromem.DB
	embed    chromem.EmbeddingFunc
	sessions map[string]*core.Session
}

// NewChromemService creates a chromem-backed service.
func NewChromemService(optFns ...func(o *ChromemOptions)) (*ChromemService, error) {
	opts := ChromemOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Embedding == nil {
		opts.Embedding = chromem.NewEmbeddingFuncDefault()
	}

	var db *chromem.DB
	if opts.PersistPath != "" {
		var err error
		db, err = chromem.NewPersistentDB(opts.PersistPath, true)
		if err != nil {
			return nil, fmt.Errorf("open chromem database: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemService{
		db:       db,
		embed:    opts.Embedding,
		sessions: make(map[string]*core.Session),
	}, nil
}

func collectionName(sessionID string) string {
	return sanitize.Identifier("session_" + sessionID)
}

func (s *ChromemService) collection(sessionID string) (*chromem.Collection, error) {
	return s.db.GetOrCreateCollection(collectionName(sessionID), nil, s.embed)
}

// AddMemory embeds and stores messages as documents in the session's
// collection.
func (s *ChromemService) AddMemory(ctx context.Context, sessionID string, messages []core.Message) error {
	col, err := s.collection(sessionID)
	if err != nil {
		return fmt.Errorf("get collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(messages))
	now := time.Now()
	for i, msg := range messages {
		md := map[string]string{
			"role":      msg.Role,
			"createdAt": now.Add(time.Duration(i) * time.Nanosecond).Format(time.RFC3339Nano),
		}
		for k, v := range msg.Metadata {
			md[k] = fmt.Sprintf("%v", v)
		}
		docs = append(docs, chromem.Document{
			ID:       uuid.NewString(),
			Content:  msg.Content,
			Metadata: md,
		})
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}

	s.mu.Lock()
	if sess, exists := s.sessions[sessionID]; exists {
		sess.Touch()
	}
	s.mu.Unlock()
	return nil
}

// SearchMemory runs a semantic similarity query over the session's
// collection. Scores are cosine similarities in [0,1].
func (s *ChromemService) SearchMemory(ctx context.Context, sessionID string, query core.SearchQuery) ([]core.MemoryRecord, error) {
	col, err := s.collection(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	// chromem rejects result counts above the collection size.
	if n := col.Count(); limit > n {
		limit = n
	}
	if limit == 0 {
		return []core.MemoryRecord{}, nil
	}

	// chromem rejects an empty query text; metadata-scoped listings use a
	// neutral probe so the where-filter still applies.
	text := query.Text
	if text == "" {
		text = "session context"
	}

	results, err := col.Query(ctx, text, limit, query.Metadata, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	records := make([]core.MemoryRecord, 0, len(results))
	for _, res := range results {
		records = append(records, toRecord(sessionID, res.ID, res.Content, res.Metadata, float64(res.Similarity)))
	}
	return records, nil
}

// GetSummary joins the most recent documents into a short service-side
// summary.
func (s *ChromemService) GetSummary(ctx context.Context, sessionID string) (string, error) {
	col, err := s.collection(sessionID)
	if err != nil {
		return "", fmt.Errorf("get collection: %w", err)
	}
	n := col.Count()
	if n == 0 {
		return "", nil
	}
	if n > 10 {
		n = 10
	}
	// Pull a window of documents, then order by stored timestamp since the
	// collection itself has no insertion order.
	results, err := col.Query(ctx, "recent conversation", n, nil, nil)
	if err != nil {
		return "", fmt.Errorf("query collection: %w", err)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Metadata["createdAt"] < results[j].Metadata["createdAt"]
	})
	start := len(results) - 3
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, res := range results[start:] {
		content := res.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		parts = append(parts, res.Metadata["role"]+": "+content)
	}
	return strings.Join(parts, "\n"), nil
}

// CreateSession stores the session handle.
func (s *ChromemService) CreateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session.Clone()
	return nil
}

// GetSessions returns the user's sessions most recently active first.
func (s *ChromemService) GetSessions(_ context.Context, userID string, limit int) ([]*core.Session, error) {
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

// UpdateSession replaces an existing session handle.
func (s *ChromemService) UpdateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; !exists {
		return fmt.Errorf("session %s not found", session.SessionID)
	}
	s.sessions[session.SessionID] = session.Clone()
	return nil
}

// DeleteSession drops the session handle and its collection.
func (s *ChromemService) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName(sessionID)); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func toRecord(sessionID, id, content string, md map[string]string, score float64) core.MemoryRecord {
	rec := core.MemoryRecord{
		ID:        id,
		SessionID: sessionID,
		Role:      md["role"],
		Content:   content,
		Metadata:  map[string]any{},
		Score:     score,
	}
	if ts, err := time.Parse(time.RFC3339Nano, md["createdAt"]); err == nil {
		rec.CreatedAt = ts
	}
	for k, v := range md {
		if k == "role" || k == "createdAt" {
			continue
		}
		rec.Metadata[k] = v
	}
	return rec
}

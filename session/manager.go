package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/memory"
)

// DefaultIDPrefix is the fixed prefix of generated session ids.
const DefaultIDPrefix = "labinsight"

// DefaultRetention is the active lifetime of a session before the expiry
// sweep removes it.
const DefaultRetention = 90 * 24 * time.Hour

// Options configures a Manager.
type Options struct {
	// IDPrefix is the fixed component of generated session ids.
	IDPrefix string
	// Retention is the maximum session age used by CleanupExpired when no
	// explicit age is given.
	Retention time.Duration
	// Logger receives lifecycle warnings.
	Logger logging.Logger
}

// Manager owns the per-user session state machine
// (NONE -> ACTIVE -> EXPIRED | DELETED). It resolves sessions through the
// memory client but keeps a local userID -> sessionID cache so get-or-create
// stays idempotent even while the store is degraded.
type Manager struct {
	mem    *memory.Client
	opts   Options
	logger logging.Logger

	mu     sync.Mutex
	active map[string]*core.Session // userID -> active session
}

// NewManager constructs a Manager over the given memory client.
func NewManager(mem *memory.Client, optFns ...func(o *Options)) *Manager {
	opts := Options{
		IDPrefix:  DefaultIDPrefix,
		Retention: DefaultRetention,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Manager{mem: mem, opts: opts, logger: opts.Logger, active: make(map[string]*core.Session)}
}

// GenerateSessionID builds a deterministic-format, globally-unique token:
// prefix, userId, millisecond timestamp and a random suffix. Uniqueness is a
// best-effort collision-avoidance property, not cryptographic.
func (m *Manager) GenerateSessionID(userID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%d_%s", m.opts.IDPrefix, userID, time.Now().UnixMilli(), suffix)
}

// Create always succeeds: even with the memory store unavailable it returns
// a freshly generated session so the caller is never blocked. The record is
// persisted when the store is reachable.
func (m *Manager) Create(ctx context.Context, userID string, metadata map[string]string) *core.Session {
	sess := core.NewSession(m.GenerateSessionID(userID), userID, metadata)

	if res := m.mem.CreateSession(ctx, sess); res.Degraded {
		m.logger.Warn("session created without persistence", "user_id", userID, "session_id", sess.SessionID, "error", res.Err)
	}

	m.mu.Lock()
	m.active[userID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the user's most recently active session. Absence is not an
// error: the second return is false when the user has none.
func (m *Manager) Get(ctx context.Context, userID string) (*core.Session, bool) {
	m.mu.Lock()
	cached, hit := m.active[userID]
	m.mu.Unlock()
	if hit {
		return cached, true
	}

	res := m.mem.Sessions(ctx, userID, 1)
	if len(res.Value) == 0 {
		return nil, false
	}

	sess := res.Value[0]
	m.mu.Lock()
	m.active[userID] = sess
	m.mu.Unlock()
	return sess, true
}

// GetOrCreate resolves the user's active session, creating one when none
// exists. Repeated calls within the session's active lifetime return the
// identical session id.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) *core.Session {
	if sess, found := m.Get(ctx, userID); found {
		return sess
	}
	return m.Create(ctx, userID, nil)
}

// UpdateMetadata merges the given pairs into the session's metadata and
// refreshes its activity timestamp.
func (m *Manager) UpdateMetadata(ctx context.Context, sessionID string, metadata map[string]string) bool {
	m.mu.Lock()
	var sess *core.Session
	for _, s := range m.active {
		if s.SessionID == sessionID {
			sess = s
			break
		}
	}
	if sess != nil {
		for k, v := range metadata {
			sess.Metadata[k] = v
		}
		sess.Touch()
	}
	m.mu.Unlock()

	if sess == nil {
		return false
	}
	return m.mem.UpdateSession(ctx, sess).Ok()
}

// Delete removes the user's session (privacy control). Returns true when
// the store confirmed the delete; the local handle is dropped regardless.
func (m *Manager) Delete(ctx context.Context, userID string) bool {
	m.mu.Lock()
	sess, found := m.active[userID]
	delete(m.active, userID)
	m.mu.Unlock()

	sessionID := ""
	if found {
		sessionID = sess.SessionID
	} else if remote, remoteFound := m.lookupRemote(ctx, userID); remoteFound {
		sessionID = remote.SessionID
	}
	if sessionID == "" {
		return false
	}
	return m.mem.DeleteSession(ctx, sessionID).Ok()
}

// List returns up to limit of the user's sessions, most recent first.
func (m *Manager) List(ctx context.Context, userID string, limit int) []*core.Session {
	return m.mem.Sessions(ctx, userID, limit).Value
}

// CleanupExpired deletes sessions older than maxAge (0 uses the configured
// retention) and returns the number removed. A session failing to delete is
// skipped, not fatal to the sweep.
func (m *Manager) CleanupExpired(ctx context.Context, userID string, maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = m.opts.Retention
	}

	removed := 0
	for _, sess := range m.List(ctx, userID, 0) {
		if sess.Age() < maxAge {
			continue
		}
		if !m.mem.DeleteSession(ctx, sess.SessionID).Ok() {
			m.logger.Warn("expired session delete skipped", "session_id", sess.SessionID)
			continue
		}
		m.mu.Lock()
		if cached, hit := m.active[sess.UserID]; hit && cached.SessionID == sess.SessionID {
			delete(m.active, sess.UserID)
		}
		m.mu.Unlock()
		removed++
	}
	return removed
}

func (m *Manager) lookupRemote(ctx context.Context, userID string) (*core.Session, bool) {
	res := m.mem.Sessions(ctx, userID, 1)
	if len(res.Value) == 0 {
		return nil, false
	}
	return res.Value[0], true
}

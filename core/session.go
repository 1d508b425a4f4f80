package core

import "time"

// Session is a persistent handle grouping a user's interactions for memory
// continuity. One active session per user is the invariant enforced by the
// session manager's get-or-create path; a session leaves the active state
// either by caller-initiated deletion (privacy control) or by the expiry
// sweep once LastActivityAt falls outside the retention window.
type Session struct {
	SessionID      string            `json:"sessionId"`
	UserID         string            `json:"userId"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastActivityAt time.Time         `json:"lastActivityAt"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// NewSession creates a session with both timestamps set to now and a copy of
// the provided metadata (nil-safe).
func NewSession(sessionID, userID string, metadata map[string]string) *Session {
	now := time.Now()
	md := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
	md["userId"] = userID
	return &Session{
		SessionID:      sessionID,
		UserID:         userID,
		CreatedAt:      now,
		LastActivityAt: now,
		Metadata:       md,
	}
}

// Touch updates the activity timestamp.
func (s *Session) Touch() { s.LastActivityAt = time.Now() }

// Age returns the time elapsed since the session's last activity.
func (s *Session) Age() time.Duration { return time.Since(s.LastActivityAt) }

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Metadata = make(map[string]string, len(s.Metadata))
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return &clone
}

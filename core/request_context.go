package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/labinsight/insightmesh/logging"
)

// RequestContext carries the scoped execution state for one analysis
// request: identifiers, the ambient cancellation Context, a logger already
// tagged with those identifiers, and the start time used for end-to-end
// processing measurement. Fan-out branches share one RequestContext
// read-only; each branch writes only its own result slot.
type RequestContext struct {
	Context   context.Context
	RequestID string
	UserID    string
	SessionID string
	StartedAt time.Time

	*loggerAdapter
}

// NewRequestContext constructs a RequestContext with a generated request id
// and the clock started.
func NewRequestContext(ctx context.Context, userID, sessionID string, logger logging.Logger) *RequestContext {
	return &RequestContext{
		Context:       ctx,
		RequestID:     uuid.NewString(),
		UserID:        userID,
		SessionID:     sessionID,
		StartedAt:     time.Now(),
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done mirrors context.Context's Done.
func (rc *RequestContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RequestContext) Err() error { return rc.Context.Err() }

// Elapsed returns the time since the request started.
func (rc *RequestContext) Elapsed() time.Duration { return time.Since(rc.StartedAt) }

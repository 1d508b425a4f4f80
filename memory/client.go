package memory

import (
	"context"
	"errors"
	"time"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/ratelimit"
	"github.com/labinsight/insightmesh/retry"
	"github.com/labinsight/insightmesh/sanitize"
)

// Degradation reasons surfaced on Result.Err. These never propagate as
// returned errors; they exist for errors.Is checks and log context.
var (
	// ErrRateLimited marks a local admission denial.
	ErrRateLimited = errors.New("memory: rate limited")
	// ErrPHIDetected marks a write refused because content still matched PHI
	// patterns after scrubbing.
	ErrPHIDetected = errors.New("memory: PHI detected, write refused")
	// ErrNoService marks a client constructed without a backing service.
	ErrNoService = errors.New("memory: no service configured")
)

// Result is the outcome of a fail-open memory operation: either Ok with a
// value, or Degraded with the fallback value and the reason the real value
// was unavailable.
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// Ok reports whether the operation completed against the real service.
func (r Result[T]) Ok() bool { return !r.Degraded }

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func degraded[T any](fallback T, err error) Result[T] {
	return Result[T]{Value: fallback, Degraded: true, Err: err}
}

// Options configures a Client.
type Options struct {
	// Limiter gates every read/write; nil constructs a default window.
	Limiter *ratelimit.SlidingWindow
	// Logger receives degradation warnings.
	Logger logging.Logger
	// MaxAttempts and BaseDelay parameterize the retry executor wrapped
	// around each service call.
	MaxAttempts int
	BaseDelay   time.Duration
	// CallTimeout bounds each individual service attempt.
	CallTimeout time.Duration
}

// Client wraps a core.MemoryService with rate limiting, bounded retry, PHI
// sanitization on writes and fail-open degradation on every path. A nil
// service is valid: every operation then degrades immediately, which keeps
// the rest of the system functional without memory.
type Client struct {
	svc     core.MemoryService
	limiter *ratelimit.SlidingWindow
	logger  logging.Logger
	opts    Options
}

// NewClient constructs a Client around svc (which may be nil).
func NewClient(svc core.MemoryService, optFns ...func(o *Options)) *Client {
	opts := Options{
		MaxAttempts: retry.DefaultMaxAttempts,
		BaseDelay:   retry.DefaultBaseDelay,
		CallTimeout: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Client{svc: svc, limiter: opts.Limiter, logger: opts.Logger, opts: opts}
}

// Add sanitizes and appends messages to a session's log. The write is
// refused (degraded, not failed) when content still matches PHI patterns
// after scrubbing. The log is append-only; a degraded write rolls nothing
// back because nothing was written.
func (c *Client) Add(ctx context.Context, sessionID string, messages []core.Message) Result[bool] {
	if len(messages) == 0 {
		return ok(true)
	}

	clean := make([]core.Message, len(messages))
	for i, msg := range messages {
		msg.Content = sanitize.Scrub(msg.Content)
		if !sanitize.Compliant(msg.Content) {
			c.logger.Warn("refusing memory write, PHI detected", "session_id", sessionID, "role", msg.Role)
			return degraded(false, ErrPHIDetected)
		}
		clean[i] = msg
	}

	return execute(ctx, c, "add", sessionID, false, func(ctx context.Context) (bool, error) {
		if err := c.svc.AddMemory(ctx, sessionID, clean); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Search runs a relevance search over a session's records, degrading to an
// empty slice.
func (c *Client) Search(ctx context.Context, sessionID string, query core.SearchQuery) Result[[]core.MemoryRecord] {
	return execute(ctx, c, "search", sessionID, []core.MemoryRecord{}, func(ctx context.Context) ([]core.MemoryRecord, error) {
		return c.svc.SearchMemory(ctx, sessionID, query)
	})
}

// Summary fetches the service-side session summary, degrading to "".
func (c *Client) Summary(ctx context.Context, sessionID string) Result[string] {
	return execute(ctx, c, "summary", sessionID, "", func(ctx context.Context) (string, error) {
		return c.svc.GetSummary(ctx, sessionID)
	})
}

// CreateSession persists a session record.
func (c *Client) CreateSession(ctx context.Context, session *core.Session) Result[bool] {
	return execute(ctx, c, "create_session", session.UserID, false, func(ctx context.Context) (bool, error) {
		if err := c.svc.CreateSession(ctx, session); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Sessions lists a user's sessions, most recently active first, degrading
// to an empty slice.
func (c *Client) Sessions(ctx context.Context, userID string, limit int) Result[[]*core.Session] {
	return execute(ctx, c, "sessions", userID, []*core.Session{}, func(ctx context.Context) ([]*core.Session, error) {
		return c.svc.GetSessions(ctx, userID, limit)
	})
}

// UpdateSession replaces a session's metadata and activity timestamp.
func (c *Client) UpdateSession(ctx context.Context, session *core.Session) Result[bool] {
	return execute(ctx, c, "update_session", session.UserID, false, func(ctx context.Context) (bool, error) {
		if err := c.svc.UpdateSession(ctx, session); err != nil {
			return false, err
		}
		return true, nil
	})
}

// DeleteSession removes a session and its records.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) Result[bool] {
	return execute(ctx, c, "delete_session", sessionID, false, func(ctx context.Context) (bool, error) {
		if err := c.svc.DeleteSession(ctx, sessionID); err != nil {
			return false, err
		}
		return true, nil
	})
}

// execute runs one service call through the shared admission/retry/fail-open
// pipeline. Rate-limit denial is treated exactly like a remote error to keep
// caller-visible behavior uniform.
func execute[T any](ctx context.Context, c *Client, op, key string, fallback T, call func(ctx context.Context) (T, error)) Result[T] {
	start := time.Now()
	logCall := func(deg bool, err error) {
		if il, isInsight := c.logger.(*logging.InsightLogger); isInsight {
			il.LogMemoryCall(op, time.Since(start), deg, err)
		}
	}

	if c.svc == nil {
		logCall(true, ErrNoService)
		return degraded(fallback, ErrNoService)
	}
	if !c.limiter.Allow(key) {
		c.logger.Warn("memory operation rate limited", "operation", op, "key", key)
		logCall(true, ErrRateLimited)
		return degraded(fallback, ErrRateLimited)
	}

	value, err := retry.DoValue(ctx, func(ctx context.Context) (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
		defer cancel()
		return call(callCtx)
	}, func(o *retry.Options) {
		o.MaxAttempts = c.opts.MaxAttempts
		o.BaseDelay = c.opts.BaseDelay
	})
	if err != nil {
		c.logger.Warn("memory operation degraded", "operation", op, "key", key, "error", err)
		logCall(true, err)
		return degraded(fallback, err)
	}
	logCall(false, nil)
	return ok(value)
}

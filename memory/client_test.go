package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/ratelimit"
)

// flakyService fails every call until failures is exhausted.
type flakyService struct {
	*InMemoryService
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyService) tick() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("memory service unavailable")
	}
	return nil
}

func (f *flakyService) AddMemory(ctx context.Context, sessionID string, msgs []core.Message) error {
	if err := f.tick(); err != nil {
		return err
	}
	return f.InMemoryService.AddMemory(ctx, sessionID, msgs)
}

func (f *flakyService) SearchMemory(ctx context.Context, sessionID string, q core.SearchQuery) ([]core.MemoryRecord, error) {
	if err := f.tick(); err != nil {
		return nil, err
	}
	return f.InMemoryService.SearchMemory(ctx, sessionID, q)
}

func fastClient(svc core.MemoryService, optFns ...func(o *Options)) *Client {
	base := func(o *Options) {
		o.BaseDelay = time.Millisecond
		o.CallTimeout = time.Second
	}
	return NewClient(svc, append([]func(o *Options){base}, optFns...)...)
}

func TestClient_NilServiceDegrades(t *testing.T) {
	c := fastClient(nil)

	res := c.Search(context.Background(), "s1", core.SearchQuery{Text: "anything"})
	assert.True(t, res.Degraded)
	assert.ErrorIs(t, res.Err, ErrNoService)
	assert.Empty(t, res.Value)

	add := c.Add(context.Background(), "s1", []core.Message{{Role: "user", Content: "hi"}})
	assert.True(t, add.Degraded)
}

func TestClient_AddScrubsBeforeWrite(t *testing.T) {
	svc := NewInMemoryService()
	c := fastClient(svc)

	res := c.Add(context.Background(), "s1", []core.Message{
		{Role: "user", Content: "name: Jane Doe, reach me at jane@example.com about low energy"},
	})
	require.True(t, res.Ok())

	stored, err := svc.SearchMemory(context.Background(), "s1", core.SearchQuery{Text: "energy", Limit: 5})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotContains(t, stored[0].Content, "Jane Doe")
	assert.NotContains(t, stored[0].Content, "jane@example.com")
}

func TestClient_AddRefusesPHI(t *testing.T) {
	svc := NewInMemoryService()
	c := fastClient(svc)

	res := c.Add(context.Background(), "s1", []core.Message{
		{Role: "user", Content: "my number is 555-867-5309"},
	})
	assert.True(t, res.Degraded)
	assert.ErrorIs(t, res.Err, ErrPHIDetected)

	// Nothing reached the service.
	stored, _ := svc.SearchMemory(context.Background(), "s1", core.SearchQuery{Text: "number", Limit: 5})
	assert.Empty(t, stored)
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	svc := &flakyService{InMemoryService: NewInMemoryService(), failures: 2}
	c := fastClient(svc, func(o *Options) { o.MaxAttempts = 3 })

	res := c.Add(context.Background(), "s1", []core.Message{{Role: "user", Content: "persisted eventually"}})
	assert.True(t, res.Ok())
	assert.Equal(t, 3, svc.calls)
}

func TestClient_ExhaustionDegradesWithoutError(t *testing.T) {
	svc := &flakyService{InMemoryService: NewInMemoryService(), failures: 10}
	c := fastClient(svc, func(o *Options) { o.MaxAttempts = 2 })

	res := c.Search(context.Background(), "s1", core.SearchQuery{Text: "x"})
	assert.True(t, res.Degraded)
	assert.NotNil(t, res.Err)
	assert.NotNil(t, res.Value, "fallback must be a usable empty slice")
	assert.Equal(t, 2, svc.calls)
}

func TestClient_RateLimitDeniesLikeRemoteFailure(t *testing.T) {
	svc := NewInMemoryService()
	limiter := ratelimit.New(func(o *ratelimit.Options) {
		o.MaxRequests = 1
		o.Window = time.Minute
	})
	c := fastClient(svc, func(o *Options) { o.Limiter = limiter })

	first := c.Search(context.Background(), "s1", core.SearchQuery{Text: "x"})
	assert.True(t, first.Ok())

	second := c.Search(context.Background(), "s1", core.SearchQuery{Text: "x"})
	assert.True(t, second.Degraded)
	assert.ErrorIs(t, second.Err, ErrRateLimited)
	assert.Empty(t, second.Value)
}

func TestClient_SessionOperations(t *testing.T) {
	svc := NewInMemoryService()
	c := fastClient(svc)
	ctx := context.Background()

	sess := core.NewSession("sess-9", "u9", nil)
	assert.True(t, c.CreateSession(ctx, sess).Ok())

	list := c.Sessions(ctx, "u9", 5)
	require.True(t, list.Ok())
	require.Len(t, list.Value, 1)

	sess.Metadata["plan"] = "active"
	assert.True(t, c.UpdateSession(ctx, sess).Ok())
	assert.True(t, c.DeleteSession(ctx, "sess-9").Ok())

	// Deleting again fails remotely but still degrades instead of erroring.
	res := c.DeleteSession(ctx, "sess-9")
	assert.True(t, res.Degraded)
}

package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/memory"
)

func newTestManager(svc core.MemoryService) *Manager {
	mem := memory.NewClient(svc, func(o *memory.Options) {
		o.BaseDelay = time.Millisecond
	})
	return NewManager(mem)
}

func TestGenerateSessionID_Format(t *testing.T) {
	m := newTestManager(memory.NewInMemoryService())
	id := m.GenerateSessionID("u1")
	assert.Regexp(t, regexp.MustCompile(`^labinsight_u1_\d+_[0-9a-f]{8}$`), id)

	other := m.GenerateSessionID("u1")
	assert.NotEqual(t, id, other)
}

func TestCreate_PersistsWhenStoreAvailable(t *testing.T) {
	svc := memory.NewInMemoryService()
	m := newTestManager(svc)

	sess := m.Create(context.Background(), "u1", map[string]string{"source": "api"})
	require.NotNil(t, sess)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "u1", sess.Metadata["userId"])

	stored, err := svc.GetSessions(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sess.SessionID, stored[0].SessionID)
}

func TestCreate_SucceedsWithoutStore(t *testing.T) {
	m := newTestManager(nil)
	sess := m.Create(context.Background(), "u1", nil)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.SessionID)
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	m := newTestManager(memory.NewInMemoryService())
	ctx := context.Background()

	first := m.GetOrCreate(ctx, "u1")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.SessionID, m.GetOrCreate(ctx, "u1").SessionID)
	}
}

func TestGetOrCreate_IdempotentWithDegradedStore(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	first := m.GetOrCreate(ctx, "u1")
	assert.Equal(t, first.SessionID, m.GetOrCreate(ctx, "u1").SessionID)
}

func TestGet_RecoversFromStoreAfterCacheLoss(t *testing.T) {
	svc := memory.NewInMemoryService()
	first := newTestManager(svc)
	created := first.Create(context.Background(), "u1", nil)

	// A fresh manager (new process) resolves the same session from the store.
	second := newTestManager(svc)
	got, found := second.Get(context.Background(), "u1")
	require.True(t, found)
	assert.Equal(t, created.SessionID, got.SessionID)
}

func TestGet_NotFoundIsNotAnError(t *testing.T) {
	m := newTestManager(memory.NewInMemoryService())
	_, found := m.Get(context.Background(), "nobody")
	assert.False(t, found)
}

func TestUpdateMetadata(t *testing.T) {
	svc := memory.NewInMemoryService()
	m := newTestManager(svc)
	ctx := context.Background()

	sess := m.Create(ctx, "u1", nil)
	assert.True(t, m.UpdateMetadata(ctx, sess.SessionID, map[string]string{"plan": "active"}))

	stored, _ := svc.GetSessions(ctx, "u1", 1)
	require.Len(t, stored, 1)
	assert.Equal(t, "active", stored[0].Metadata["plan"])

	assert.False(t, m.UpdateMetadata(ctx, "unknown-session", map[string]string{"a": "b"}))
}

func TestDelete(t *testing.T) {
	svc := memory.NewInMemoryService()
	m := newTestManager(svc)
	ctx := context.Background()

	m.Create(ctx, "u1", nil)
	assert.True(t, m.Delete(ctx, "u1"))

	_, found := m.Get(ctx, "u1")
	assert.False(t, found)

	// Deleting a user with no session reports false without erroring.
	assert.False(t, m.Delete(ctx, "u1"))
}

func TestCleanupExpired(t *testing.T) {
	svc := memory.NewInMemoryService()
	m := newTestManager(svc)
	ctx := context.Background()

	fresh := m.Create(ctx, "u1", nil)

	stale := core.NewSession(m.GenerateSessionID("u1"), "u1", nil)
	stale.LastActivityAt = time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, svc.CreateSession(ctx, stale))

	removed := m.CleanupExpired(ctx, "u1", 30*24*time.Hour)
	assert.Equal(t, 1, removed)

	left, _ := svc.GetSessions(ctx, "u1", 10)
	require.Len(t, left, 1)
	assert.Equal(t, fresh.SessionID, left[0].SessionID)
}

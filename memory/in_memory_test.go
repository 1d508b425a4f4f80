package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/insightmesh/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.MemoryService = (*InMemoryService)(nil)
	_ core.MemoryService = (*ChromemService)(nil)
)

func TestInMemoryService_AddAndSearch(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	err := svc.AddMemory(ctx, "s1", []core.Message{
		{Role: "user", Content: "thyroid function and body temperature", Metadata: map[string]any{"type": "analysis_request"}},
		{Role: "assistant", Content: "metabolic rate appears low", Metadata: map[string]any{"type": "analysis"}},
		{Role: "user", Content: "sleep quality last week"},
	})
	require.NoError(t, err)

	res, err := svc.SearchMemory(ctx, "s1", core.SearchQuery{Text: "thyroid temperature", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Contains(t, res[0].Content, "thyroid")
	assert.Greater(t, res[0].Score, 0.0)
	assert.LessOrEqual(t, res[0].Score, 1.0)
}

func TestInMemoryService_SearchMetadataFilter(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	require.NoError(t, svc.AddMemory(ctx, "s1", []core.Message{
		{Role: "user", Content: "goal: raise body temperature", Metadata: map[string]any{"type": "health_goal"}},
		{Role: "user", Content: "raise energy levels", Metadata: map[string]any{"type": "preference"}},
	}))

	res, err := svc.SearchMemory(ctx, "s1", core.SearchQuery{Text: "raise", Limit: 5, Metadata: map[string]string{"type": "health_goal"}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, res[0].Content, "temperature")
}

func TestInMemoryService_SearchEmptySession(t *testing.T) {
	svc := NewInMemoryService()
	res, err := svc.SearchMemory(context.Background(), "missing", core.SearchQuery{Text: "anything", Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestInMemoryService_Summary(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	summary, err := svc.GetSummary(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, summary)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.AddMemory(ctx, "s1", []core.Message{{Role: "user", Content: "entry"}}))
	}
	summary, err = svc.GetSummary(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestInMemoryService_SessionLifecycle(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	sess := core.NewSession("sess-1", "u1", map[string]string{"source": "test"})
	require.NoError(t, svc.CreateSession(ctx, sess))

	got, err := svc.GetSessions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sess-1", got[0].SessionID)
	assert.Equal(t, "u1", got[0].Metadata["userId"])

	// Returned sessions are clones.
	got[0].Metadata["source"] = "mutated"
	again, _ := svc.GetSessions(ctx, "u1", 10)
	assert.Equal(t, "test", again[0].Metadata["source"])

	got[0].Metadata["source"] = "updated"
	require.NoError(t, svc.UpdateSession(ctx, got[0]))

	require.NoError(t, svc.DeleteSession(ctx, "sess-1"))
	left, _ := svc.GetSessions(ctx, "u1", 10)
	assert.Empty(t, left)

	assert.Error(t, svc.DeleteSession(ctx, "sess-1"))
	assert.Error(t, svc.UpdateSession(ctx, sess))
}

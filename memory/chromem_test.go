package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/insightmesh/core"
)

// testEmbedding is a deterministic local embedding based on token hashing,
// good enough to exercise storage and similarity plumbing without a network
// dependency.
func testEmbedding(_ context.Context, text string) ([]float32, error) {
	const dim = 64
	vec := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%dim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec, nil
}

func newTestChromem(t *testing.T) *ChromemService {
	t.Helper()
	svc, err := NewChromemService(func(o *ChromemOptions) {
		o.Embedding = chromem.EmbeddingFunc(testEmbedding)
	})
	require.NoError(t, err)
	return svc
}

func TestChromemService_AddAndSearch(t *testing.T) {
	svc := newTestChromem(t)
	ctx := context.Background()

	err := svc.AddMemory(ctx, "sess-1", []core.Message{
		{Role: "user", Content: "thyroid support and body temperature tracking"},
		{Role: "assistant", Content: "focus on metabolic rate improvement"},
		{Role: "user", Content: "training schedule for next month"},
	})
	require.NoError(t, err)

	res, err := svc.SearchMemory(ctx, "sess-1", core.SearchQuery{Text: "thyroid temperature", Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Contains(t, res[0].Content, "thyroid")
	assert.Equal(t, "user", res[0].Role)
}

func TestChromemService_SearchEmptyCollection(t *testing.T) {
	svc := newTestChromem(t)
	res, err := svc.SearchMemory(context.Background(), "empty", core.SearchQuery{Text: "anything", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestChromemService_LimitClampedToCollectionSize(t *testing.T) {
	svc := newTestChromem(t)
	ctx := context.Background()
	require.NoError(t, svc.AddMemory(ctx, "sess-1", []core.Message{{Role: "user", Content: "only one entry"}}))

	res, err := svc.SearchMemory(ctx, "sess-1", core.SearchQuery{Text: "entry", Limit: 50})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestChromemService_Sessions(t *testing.T) {
	svc := newTestChromem(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateSession(ctx, core.NewSession("sess-a", "u1", nil)))
	sessions, err := svc.GetSessions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, svc.AddMemory(ctx, "sess-a", []core.Message{{Role: "user", Content: "hello"}}))
	require.NoError(t, svc.DeleteSession(ctx, "sess-a"))

	sessions, err = svc.GetSessions(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

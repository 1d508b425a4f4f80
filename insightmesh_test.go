package insightmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/model"
)

func TestInsightMesh_AnalyzeWithDefaults(t *testing.T) {
	mesh := New(model.NewMockModel("test"))

	result, err := mesh.Analyze(context.Background(), "u1", core.HealthData{
		BodyTemperature: 98.1,
		PulseRate:       78,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "u1", result.UserID)
	assert.GreaterOrEqual(t, result.OverallHealthScore, 0.0)
	assert.LessOrEqual(t, result.OverallHealthScore, 100.0)
	assert.True(t, result.RiskAssessment.OverallRisk.Valid())
}

func TestInsightMesh_HistoryAccumulates(t *testing.T) {
	mesh := New(model.NewMockModel("test"))
	ctx := context.Background()

	first, err := mesh.Analyze(ctx, "u1", core.HealthData{PulseRate: 70})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	second, err := mesh.Analyze(ctx, "u1", core.HealthData{PulseRate: 72})
	require.NoError(t, err)

	history, err := mesh.History("u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	other, err := mesh.History("u2", 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInsightMesh_SessionReusedAcrossAnalyses(t *testing.T) {
	mesh := New(model.NewMockModel("test"))
	ctx := context.Background()

	first, err := mesh.Analyze(ctx, "u1", core.HealthData{PulseRate: 70})
	require.NoError(t, err)
	second, err := mesh.Analyze(ctx, "u1", core.HealthData{PulseRate: 75})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestInsightMesh_WorksWithoutMemoryService(t *testing.T) {
	mesh := New(model.NewMockModel("test"), func(o *Options) {
		o.MemoryService = nil
	})

	result, err := mesh.Analyze(context.Background(), "u1", core.HealthData{PulseRate: 70})
	require.NoError(t, err)
	assert.Equal(t, "u1", result.UserID)
	assert.True(t, result.RiskAssessment.OverallRisk.Valid())
}

func TestInsightMesh_StoredGoalsReachTheContext(t *testing.T) {
	m := model.NewMockModel("test")
	mesh := New(m)
	ctx := context.Background()

	sess := mesh.Sessions().GetOrCreate(ctx, "u1")
	res := mesh.Memory().Add(ctx, sess.SessionID, []core.Message{{
		Role:     "user",
		Content:  "goal: raise waking temperature to 98F",
		Metadata: map[string]any{"type": "goal"},
	}})
	require.True(t, res.Ok())

	// The synthesis prompt folds user goals in, so a canned rule keyed on
	// the goal text proves the context made the round trip.
	m.AddResponse("raise waking temperature to 98F",
		`{"insights": [{"category": "metabolic", "insight": "Progress toward temperature goal", "confidence": 0.8, "priority": 2}]}`)

	result, err := mesh.Analyze(ctx, "u1", core.HealthData{BodyTemperature: 97.5})
	require.NoError(t, err)
	require.Len(t, result.Insights, 1)
	assert.Equal(t, "metabolic", result.Insights[0].Category)
}

package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrioritizeRecommendations_KeywordOrdering(t *testing.T) {
	got := prioritizeRecommendations([]string{
		"reduce stress",
		"support thyroid function",
		"eliminate PUFA",
	})
	require.Len(t, got, 3)
	assert.Equal(t, "support thyroid function", got[0])
	assert.Equal(t, "eliminate PUFA", got[1])
	assert.Equal(t, "reduce stress", got[2])
}

func TestPrioritizeRecommendations_Deduplicates(t *testing.T) {
	got := prioritizeRecommendations(
		[]string{"thyroid support protocol", "reduce stress"},
		[]string{"Thyroid support protocol", "reduce stress"},
	)
	assert.Equal(t, []string{"thyroid support protocol", "reduce stress"}, got)
}

func TestPrioritizeRecommendations_TiesPreserveEncounterOrder(t *testing.T) {
	got := prioritizeRecommendations([]string{
		"take a daily walk",
		"drink more water",
		"raise body temperature with regular meals",
	})
	require.Len(t, got, 3)
	assert.Equal(t, "raise body temperature with regular meals", got[0])
	assert.Equal(t, "take a daily walk", got[1])
	assert.Equal(t, "drink more water", got[2])
}

func TestPrioritizeRecommendations_TruncatesToTen(t *testing.T) {
	var recs []string
	for i := 0; i < 15; i++ {
		recs = append(recs, fmt.Sprintf("generic advice number %d", i))
	}
	got := prioritizeRecommendations(recs)
	require.Len(t, got, 10)
	assert.Equal(t, "generic advice number 0", got[0])
	assert.Equal(t, "generic advice number 9", got[9])
}

func TestPrioritizeRecommendations_EmptyInputYieldsEmptySlice(t *testing.T) {
	got := prioritizeRecommendations(nil, []string{"", "   "})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

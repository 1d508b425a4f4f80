package orchestrator

import (
	"sort"
	"strings"
)

// maxRecommendations caps the prioritized list.
const maxRecommendations = 10

// priorityKeywords orders recommendations by metabolic relevance. An earlier
// keyword means higher priority; items matching no keyword sort last.
var priorityKeywords = []string{
	"thyroid support",
	"body temperature",
	"metabolic rate",
	"pufa elimination",
	"sugar optimization",
	"stress reduction",
	"light therapy",
	"temperature regulation",
}

// prioritizeRecommendations flattens the recommendation strings from every
// source, de-duplicates them, orders them by the keyword priority list and
// truncates to the top 10. Ties and non-matching items preserve their
// encounter order.
func prioritizeRecommendations(sources ...[]string) []string {
	var merged []string
	seen := make(map[string]struct{})
	for _, source := range sources {
		for _, rec := range source {
			rec = strings.TrimSpace(rec)
			if rec == "" {
				continue
			}
			key := strings.ToLower(rec)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, rec)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return keywordRank(merged[i]) < keywordRank(merged[j])
	})

	if len(merged) > maxRecommendations {
		merged = merged[:maxRecommendations]
	}
	if merged == nil {
		merged = []string{}
	}
	return merged
}

// keywordRank is the index of the first priority keyword the recommendation
// relates to, or len(priorityKeywords) when none match. A recommendation
// relates to a keyword when it contains the keyword phrase or any of its
// distinctive tokens, so "support thyroid function" still ranks under
// "thyroid support".
func keywordRank(rec string) int {
	lower := strings.ToLower(rec)
	for i, keyword := range priorityKeywords {
		if strings.Contains(lower, keyword) {
			return i
		}
		for _, tok := range strings.Fields(keyword) {
			if len(tok) >= 4 && strings.Contains(lower, tok) {
				return i
			}
		}
	}
	return len(priorityKeywords)
}

package orchestrator

import "github.com/labinsight/insightmesh/core"

// Urgency buckets derived from the overall health score.
const (
	urgencyHigh   = "high"
	urgencyMedium = "medium"
	urgencyLow    = "low"
)

// urgencyBucket maps the overall score to a follow-up urgency.
func urgencyBucket(score float64) string {
	switch {
	case score < 50:
		return urgencyHigh
	case score < 70:
		return urgencyMedium
	default:
		return urgencyLow
	}
}

// buildFollowUpSchedule emits the fixed follow-up template for the score's
// urgency bucket. The templates are part of the caller-facing contract and
// must stay byte-stable.
func buildFollowUpSchedule(score float64) core.FollowUpSchedule {
	switch urgencyBucket(score) {
	case urgencyHigh:
		return core.FollowUpSchedule{
			Immediate: []core.FollowUpItem{
				{Action: "Begin thyroid support protocol", Timeframe: "1-3 days"},
				{Action: "Eliminate PUFA sources", Timeframe: "1 week"},
				{Action: "Start temperature monitoring", Timeframe: "Daily"},
			},
			ShortTerm: []core.FollowUpItem{
				{Action: "Metabolic rate improvement", Timeframe: "2-4 weeks"},
				{Action: "Energy level stabilization", Timeframe: "4-6 weeks"},
			},
			LongTerm: []core.FollowUpItem{
				{Action: "Optimal metabolic function", Timeframe: "3-6 months"},
			},
		}
	case urgencyMedium:
		return core.FollowUpSchedule{
			Immediate: []core.FollowUpItem{
				{Action: "Optimize nutrition plan", Timeframe: "1 week"},
				{Action: "Begin light therapy", Timeframe: "1 week"},
			},
			ShortTerm: []core.FollowUpItem{
				{Action: "Improved energy patterns", Timeframe: "4-8 weeks"},
			},
			LongTerm: []core.FollowUpItem{
				{Action: "Sustained health optimization", Timeframe: "6-12 months"},
			},
		}
	default:
		return core.FollowUpSchedule{
			Immediate: []core.FollowUpItem{
				{Action: "Continue current protocol", Timeframe: "Ongoing"},
			},
			ShortTerm: []core.FollowUpItem{
				{Action: "Maintain current progress", Timeframe: "2-3 months"},
			},
			LongTerm: []core.FollowUpItem{
				{Action: "Long-term health maintenance", Timeframe: "12+ months"},
			},
		}
	}
}

// immediateActions flattens the schedule's immediate bucket into the plain
// action strings surfaced on the artifact.
func immediateActions(schedule core.FollowUpSchedule) []string {
	actions := make([]string, 0, len(schedule.Immediate))
	for _, item := range schedule.Immediate {
		actions = append(actions, item.Action)
	}
	return actions
}

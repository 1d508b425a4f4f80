package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/memory"
	"github.com/labinsight/insightmesh/model"
)

const (
	// DefaultMaxContextLength is the serialized size budget in bytes.
	DefaultMaxContextLength = 2000
	// DefaultHistoryLimit bounds the relevance search over prior analyses.
	DefaultHistoryLimit = 5
	// DefaultGoalsLimit bounds the goals-scoped search.
	DefaultGoalsLimit = 3
	// DefaultHistoryHead is how much history survives an over-budget trim.
	DefaultHistoryHead = 3
)

// Metadata type tags under which scoped records are stored and searched.
const (
	TypePreferences = "preferences"
	TypeAnalysis    = "analysis"
	TypeGoal        = "goal"
)

// Options configures an Assembler and may be overridden per BuildContext
// call.
type Options struct {
	// IncludePreferences, IncludeHistory and IncludeGoals toggle the three
	// scoped fetches. All default to true.
	IncludePreferences bool
	IncludeHistory     bool
	IncludeGoals       bool

	// HistoryLimit and GoalsLimit bound the respective searches.
	HistoryLimit int
	GoalsLimit   int

	// MaxContextLength is the serialized size budget. An assembly running
	// over it gets its history summarized and truncated to HistoryHead.
	MaxContextLength int
	HistoryHead      int

	// Summarizer condenses over-budget history. Nil falls back to a plain
	// text truncation so the budget invariant holds without a model.
	Summarizer model.Model

	// Logger receives degradation and trim warnings.
	Logger logging.Logger
}

func defaultOptions() Options {
	return Options{
		IncludePreferences: true,
		IncludeHistory:     true,
		IncludeGoals:       true,
		HistoryLimit:       DefaultHistoryLimit,
		GoalsLimit:         DefaultGoalsLimit,
		MaxContextLength:   DefaultMaxContextLength,
		HistoryHead:        DefaultHistoryHead,
	}
}

// Assembler produces HealthContext values for analysis requests.
type Assembler struct {
	mem  *memory.Client
	opts Options
}

// New constructs an Assembler over the given memory client.
func New(mem *memory.Client, optFns ...func(o *Options)) *Assembler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Assembler{mem: mem, opts: opts}
}

// BuildContext assembles the user's context for one request. The query is
// the semantic probe for the history search, typically derived from the
// incoming health data. Per-call options overlay the assembler's defaults.
//
// BuildContext never fails: a fully degraded memory client yields an empty
// but well-typed context.
func (a *Assembler) BuildContext(ctx context.Context, userID, sessionID, query string, optFns ...func(o *Options)) *core.HealthContext {
	opts := a.opts
	for _, fn := range optFns {
		fn(&opts)
	}

	hc := core.NewHealthContext(userID, sessionID)

	if opts.IncludePreferences {
		hc.UserPreferences = a.fetchPreferences(ctx, sessionID)
	}
	if opts.IncludeHistory {
		hc.RelevantHistory = a.search(ctx, sessionID, core.SearchQuery{
			Text:  query,
			Limit: opts.HistoryLimit,
		})
		hc.RecentAnalyses = a.search(ctx, sessionID, core.SearchQuery{
			Limit:    opts.HistoryHead,
			Metadata: map[string]string{"type": TypeAnalysis},
		})
	}
	if opts.IncludeGoals {
		hc.HealthGoals = a.search(ctx, sessionID, core.SearchQuery{
			Limit:    opts.GoalsLimit,
			Metadata: map[string]string{"type": TypeGoal},
		})
	}

	a.enforceBudget(ctx, hc, opts)
	return hc
}

// fetchPreferences resolves the user's stored preferences record. A record
// holding a JSON object is decoded as-is; plain text is kept under a "notes"
// key. Misses and degraded searches yield an empty map.
func (a *Assembler) fetchPreferences(ctx context.Context, sessionID string) map[string]any {
	records := a.search(ctx, sessionID, core.SearchQuery{
		Limit:    1,
		Metadata: map[string]string{"type": TypePreferences},
	})
	if len(records) == 0 {
		return map[string]any{}
	}

	content := records[0].Content
	prefs := map[string]any{}
	if err := json.Unmarshal([]byte(content), &prefs); err == nil {
		return prefs
	}
	return map[string]any{"notes": content}
}

func (a *Assembler) search(ctx context.Context, sessionID string, query core.SearchQuery) []core.MemoryRecord {
	res := a.mem.Search(ctx, sessionID, query)
	if res.Degraded {
		a.opts.Logger.Warn("context fetch degraded, using empty default",
			"session_id", sessionID, "query", query.Text, "error", res.Err)
	}
	return res.Value
}

// enforceBudget applies the size invariant: an over-budget context gets its
// history condensed into ConversationSummary and trimmed to HistoryHead. A
// summary and full history are never both delivered.
func (a *Assembler) enforceBudget(ctx context.Context, hc *core.HealthContext, opts Options) {
	if hc.Size() <= opts.MaxContextLength {
		return
	}

	summary := a.summarize(ctx, hc.RelevantHistory, opts)
	if summary == "" {
		summary = truncatedSummary(hc.RelevantHistory)
	}
	hc.ConversationSummary = summary
	if len(hc.RelevantHistory) > opts.HistoryHead {
		hc.RelevantHistory = hc.RelevantHistory[:opts.HistoryHead]
	}

	opts.Logger.Info("context trimmed to size budget",
		"session_id", hc.SessionID, "size", hc.Size(), "budget", opts.MaxContextLength)
}

func (a *Assembler) summarize(ctx context.Context, history []core.MemoryRecord, opts Options) string {
	if opts.Summarizer == nil || len(history) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, rec := range history {
		fmt.Fprintf(&sb, "- [%s] %s\n", rec.Role, rec.Content)
	}

	resp, err := opts.Summarizer.Complete(ctx, model.Request{
		Instructions: "You condense health conversation history. Reply with a short factual summary, no preamble.",
		Prompt:       "Summarize the following health history entries in under 100 words:\n\n" + sb.String(),
	})
	if err != nil {
		opts.Logger.Warn("history summarization failed, falling back to truncation", "error", err)
		return ""
	}
	return strings.TrimSpace(resp.Text)
}

// truncatedSummary is the model-free fallback: the concatenated history
// clipped to a fixed width. It is never empty for non-empty history, which
// keeps the budget invariant observable downstream.
func truncatedSummary(history []core.MemoryRecord) string {
	if len(history) == 0 {
		return "No prior history available."
	}

	const maxLen = 200
	var parts []string
	for _, rec := range history {
		parts = append(parts, rec.Content)
	}
	joined := strings.Join(parts, " ")
	if len(joined) > maxLen {
		joined = joined[:maxLen] + "..."
	}
	return joined
}

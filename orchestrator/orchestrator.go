package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labinsight/insightmesh/archive"
	"github.com/labinsight/insightmesh/assembler"
	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/memory"
	"github.com/labinsight/insightmesh/model"
	"github.com/labinsight/insightmesh/session"
)

// Options configures an Orchestrator.
type Options struct {
	// Archive receives every finished artifact for per-user history. Nil
	// defaults to an in-memory store.
	Archive archive.Store

	// Logger receives degradation warnings and synthesis telemetry.
	Logger logging.Logger
}

// Orchestrator runs the multi-engine analysis pipeline. It owns no engine
// state; engines, the assembler and the memory client are shared, immutable
// dependencies, so one Orchestrator serves concurrent requests.
type Orchestrator struct {
	model     model.Model
	engines   []core.Engine
	assembler *assembler.Assembler
	sessions  *session.Manager
	mem       *memory.Client
	store     archive.Store
	logger    logging.Logger
}

// New constructs an Orchestrator. The model drives the synthesis and risk
// calls; engines supply the fan-out branches.
func New(m model.Model, engines []core.Engine, asm *assembler.Assembler, sessions *session.Manager, mem *memory.Client, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Archive == nil {
		opts.Archive = archive.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Orchestrator{
		model:     m,
		engines:   engines,
		assembler: asm,
		sessions:  sessions,
		mem:       mem,
		store:     opts.Archive,
		logger:    opts.Logger,
	}
}

// Archive exposes the store holding finished artifacts.
func (o *Orchestrator) Archive() archive.Store { return o.store }

// GenerateAdvancedInsights runs one full analysis for the user.
//
// Pipeline: resolve the session, fan out to every engine and the context
// assembler concurrently, synthesize insights from whatever subset produced
// usable results, derive the composite score, risk assessment, prioritized
// recommendations and follow-up schedule, then persist the artifact to
// memory and the archive.
//
// External failures never surface: a degraded branch contributes its default
// and the result is still complete and well-typed. The returned error covers
// API misuse only.
func (o *Orchestrator) GenerateAdvancedInsights(ctx context.Context, userID string, data core.HealthData) (*core.AdvancedHealthInsights, error) {
	if userID == "" {
		return nil, fmt.Errorf("orchestrator: userID is required")
	}

	sess := o.sessions.GetOrCreate(ctx, userID)
	rc := core.NewRequestContext(ctx, userID, sess.SessionID, o.logger)
	rc.LogDebug("analysis started", "request_id", rc.RequestID, "user_id", userID)

	// Fan-out. Each branch owns a disjoint slot, so no locking is needed;
	// engines deliberately run without the assembled context to keep the
	// branches independent.
	results := make([]core.EngineResult, len(o.engines))
	var hc *core.HealthContext
	var wg sync.WaitGroup
	for i, eng := range o.engines {
		wg.Add(1)
		go func(i int, eng core.Engine) {
			defer wg.Done()
			results[i] = eng.Analyze(rc.Context, userID, data, nil)
		}(i, eng)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		hc = o.assembler.BuildContext(rc.Context, userID, sess.SessionID, semanticProbe(data))
	}()
	wg.Wait()

	bio, pattern, personalization := extractPayloads(results)

	insights := o.synthesizeInsights(ctx, results, hc)
	score := overallHealthScore(bio, pattern, personalization)
	risk := o.assessRisk(ctx, results, insights)
	schedule := buildFollowUpSchedule(score)

	recommendations := collectRecommendations(results, insights, risk)

	artifact := &core.AdvancedHealthInsights{
		ID:                      uuid.NewString(),
		UserID:                  userID,
		SessionID:               sess.SessionID,
		GeneratedAt:             time.Now(),
		OverallHealthScore:      score,
		ConfidenceScore:         confidenceScore(results, pattern, personalization, hc),
		Insights:                insights,
		RiskAssessment:          risk,
		PriorityRecommendations: recommendations,
		ImmediateActions:        immediateActions(schedule),
		FollowUpSchedule:        schedule,
	}

	o.persist(ctx, sess.SessionID, data, artifact)

	artifact.ProcessingTime = rc.Elapsed()
	if il, isInsight := o.logger.(*logging.InsightLogger); isInsight {
		il.LogSynthesis(len(artifact.Insights), artifact.OverallHealthScore, artifact.ProcessingTime)
	}
	return artifact, nil
}

// extractPayloads pulls the typed payloads of the built-in engines out of
// the fan-out results. Degraded results yield nil so the scorer substitutes
// neutral sub-scores.
func extractPayloads(results []core.EngineResult) (*core.BioenergeticPayload, *core.PatternPayload, *core.PersonalizationPayload) {
	var bio *core.BioenergeticPayload
	var pattern *core.PatternPayload
	var personalization *core.PersonalizationPayload
	for _, res := range results {
		if res.Degraded {
			continue
		}
		switch p := res.Payload.(type) {
		case core.BioenergeticPayload:
			bio = &p
		case core.PatternPayload:
			pattern = &p
		case core.PersonalizationPayload:
			personalization = &p
		}
	}
	return bio, pattern, personalization
}

// collectRecommendations gathers recommendation strings from every source
// and hands them to the priority sorter.
func collectRecommendations(results []core.EngineResult, insights []core.SynthesizedInsight, risk core.RiskAssessment) []string {
	var sources [][]string
	for _, res := range results {
		switch p := res.Payload.(type) {
		case core.BioenergeticPayload:
			sources = append(sources, p.Recommendations)
		case core.PatternPayload:
			sources = append(sources, p.Recommendations)
		case core.PersonalizationPayload:
			sources = append(sources, p.Recommendations)
		}
	}
	for _, insight := range insights {
		sources = append(sources, insight.Recommendations)
	}
	sources = append(sources, risk.InterventionPriorities)
	return prioritizeRecommendations(sources...)
}

// persist appends the request and the finished artifact to the session's
// memory log and saves the artifact to the archive. Both writes are
// best-effort; a failure lowers nothing but durability.
func (o *Orchestrator) persist(ctx context.Context, sessionID string, data core.HealthData, artifact *core.AdvancedHealthInsights) {
	messages := []core.Message{
		{
			Role:     "user",
			Content:  "Health analysis request: " + semanticProbe(data),
			Metadata: map[string]any{"type": assembler.TypeAnalysis, "resultId": artifact.ID},
		},
		{
			Role:     "assistant",
			Content:  artifactSummary(artifact),
			Metadata: map[string]any{"type": assembler.TypeAnalysis, "resultId": artifact.ID},
		},
	}
	if res := o.mem.Add(ctx, sessionID, messages); res.Degraded {
		o.logger.Warn("artifact memory write degraded", "session_id", sessionID, "error", res.Err)
	}
	if err := o.store.Save(artifact.UserID, artifact); err != nil {
		o.logger.Warn("artifact archive save failed", "result_id", artifact.ID, "error", err)
	}
}

// artifactSummary renders the artifact as a compact memory record so future
// context assemblies can retrieve it by relevance.
func artifactSummary(artifact *core.AdvancedHealthInsights) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis result: overall health score %.0f, risk %s, confidence %.2f.",
		artifact.OverallHealthScore, artifact.RiskAssessment.OverallRisk, artifact.ConfidenceScore)
	if len(artifact.Insights) > 0 {
		sb.WriteString(" Key insights:")
		for _, insight := range artifact.Insights {
			fmt.Fprintf(&sb, " [%s] %s", insight.Category, insight.Insight)
		}
	}
	if len(artifact.PriorityRecommendations) > 0 {
		fmt.Fprintf(&sb, " Top recommendations: %s.", strings.Join(artifact.PriorityRecommendations, "; "))
	}
	return sb.String()
}

// semanticProbe derives the relevance-search text for the context fetch from
// the submitted data.
func semanticProbe(data core.HealthData) string {
	var parts []string
	if data.HasVitals() {
		parts = append(parts, "vitals")
		if data.BodyTemperature > 0 {
			parts = append(parts, fmt.Sprintf("body temperature %.1f", data.BodyTemperature))
		}
		if data.PulseRate > 0 {
			parts = append(parts, fmt.Sprintf("pulse %.0f", data.PulseRate))
		}
	}
	if data.Diet != "" {
		parts = append(parts, data.Diet+" diet")
	}
	parts = append(parts, data.Symptoms...)
	if len(parts) == 0 {
		return "general health analysis"
	}
	return strings.Join(parts, ", ")
}

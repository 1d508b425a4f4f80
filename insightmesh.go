// Package insightmesh provides a high-level façade over the analysis
// pipeline and service abstractions (sessions, memory, archive & logging)
// enabling rapid construction of memory-augmented health analysis systems.
// Most applications interact with this package by:
//  1. Creating an InsightMesh via New() with a completion model (optionally
//     overriding default in-memory services)
//  2. Submitting health data via Analyze
//  3. Reading back prior results via History and sessions via Sessions
//
// The façade delegates pipeline coordination to orchestrator.Orchestrator
// while keeping setup and usage ergonomics concise. All defaults are safe
// for local development and testing; production deployments typically supply
// a durable memory service (e.g. the chromem-backed store) and a structured
// logger.
package insightmesh

import (
	"context"

	"github.com/labinsight/insightmesh/archive"
	"github.com/labinsight/insightmesh/assembler"
	"github.com/labinsight/insightmesh/core"
	"github.com/labinsight/insightmesh/engines"
	"github.com/labinsight/insightmesh/logging"
	"github.com/labinsight/insightmesh/memory"
	"github.com/labinsight/insightmesh/model"
	"github.com/labinsight/insightmesh/orchestrator"
	"github.com/labinsight/insightmesh/ratelimit"
	"github.com/labinsight/insightmesh/session"
)

// Options configures the InsightMesh instance.
type Options struct {
	// MemoryService backs session-scoped memory. Defaults to the in-memory
	// implementation; nil disables memory entirely (every memory operation
	// degrades, analysis still works).
	MemoryService core.MemoryService

	// Archive stores finished analysis results per user. Defaults to the
	// in-memory store.
	Archive archive.Store

	// Engines overrides the analysis engine set. Defaults to the built-in
	// bioenergetic, pattern and personalization engines driven by the
	// completion model.
	Engines []core.Engine

	// Summarizer condenses over-budget context history. Defaults to the
	// completion model.
	Summarizer model.Model

	// Limiter gates memory operations. Defaults to a 100 requests / 60s
	// sliding window.
	Limiter *ratelimit.SlidingWindow

	// MaxContextLength bounds the serialized context size. Zero uses the
	// assembler default.
	MaxContextLength int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// InsightMesh is the high-level façade aggregating the orchestrator and its
// services.
type InsightMesh struct {
	opts         Options
	orchestrator *orchestrator.Orchestrator
	sessions     *session.Manager
	mem          *memory.Client
	store        archive.Store
}

// New creates an InsightMesh around the given completion model with optional
// overrides. Any unset service is initialized with an in-memory
// implementation.
func New(m model.Model, optFns ...func(o *Options)) *InsightMesh {
	opts := Options{
		MemoryService: memory.NewInMemoryService(),
		Archive:       archive.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New()
	}
	if opts.Summarizer == nil {
		opts.Summarizer = m
	}

	mem := memory.NewClient(opts.MemoryService, func(o *memory.Options) {
		o.Limiter = opts.Limiter
		o.Logger = opts.Logger
	})
	sessions := session.NewManager(mem, func(o *session.Options) {
		o.Logger = opts.Logger
	})
	asm := assembler.New(mem, func(o *assembler.Options) {
		o.Summarizer = opts.Summarizer
		o.Logger = opts.Logger
		if opts.MaxContextLength > 0 {
			o.MaxContextLength = opts.MaxContextLength
		}
	})

	engs := opts.Engines
	if engs == nil {
		engineOpts := func(o *engines.Options) { o.Logger = opts.Logger }
		engs = []core.Engine{
			engines.NewBioenergetic(m, engineOpts),
			engines.NewPattern(m, engineOpts),
			engines.NewPersonalization(m, engineOpts),
		}
	}

	orch := orchestrator.New(m, engs, asm, sessions, mem, func(o *orchestrator.Options) {
		o.Archive = opts.Archive
		o.Logger = opts.Logger
	})

	return &InsightMesh{
		opts:         opts,
		orchestrator: orch,
		sessions:     sessions,
		mem:          mem,
		store:        opts.Archive,
	}
}

// Analyze runs the full multi-engine analysis for the user's health data and
// returns the finished artifact. External-service failures degrade to
// defaults; the returned error covers API misuse only.
func (m *InsightMesh) Analyze(ctx context.Context, userID string, data core.HealthData) (*core.AdvancedHealthInsights, error) {
	return m.orchestrator.GenerateAdvancedInsights(ctx, userID, data)
}

// History returns up to limit of the user's archived analysis results, most
// recent first (0 = no limit).
func (m *InsightMesh) History(userID string, limit int) ([]*core.AdvancedHealthInsights, error) {
	return m.store.List(userID, limit)
}

// Sessions exposes the session manager for callers that need explicit
// session control (metadata updates, deletion, retention sweeps).
func (m *InsightMesh) Sessions() *session.Manager { return m.sessions }

// Memory exposes the fail-open memory client, letting callers store
// preferences and goals the context assembler will pick up.
func (m *InsightMesh) Memory() *memory.Client { return m.mem }

// Package core provides the foundational domain types and interfaces used by
// InsightMesh. It defines the core abstractions for:
//
//   - HealthData (the biomarker/symptom input submitted by a caller)
//   - Sessions (persistent per-user handles for memory continuity)
//   - MemoryRecord / MemoryService (append-only session-scoped memory)
//   - HealthContext (the bounded, read-time projection over memory)
//   - Engines (independent domain-scoped analysis units)
//   - The synthesized result types (insights, risk, follow-up schedule)
//   - RequestContext (scoped execution state for one analysis request)
//
// The package intentionally keeps implementation concerns (persistence,
// rate limiting, orchestration, concrete engines) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core

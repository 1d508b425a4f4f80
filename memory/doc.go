// Package memory provides the session-scoped memory layer: the fail-open
// Client every other component goes through, plus two core.MemoryService
// implementations (a process-local store and an embedded chromem-go vector
// store).
//
// Memory is an optimization, not a correctness dependency. The Client never
// returns an error from a public operation: rate-limit denials, remote
// failures, timeouts and PHI refusals all degrade to a typed fallback
// (Result with Degraded set) so callers handle degradation explicitly.
package memory

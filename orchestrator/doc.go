// Package orchestrator coordinates one analysis request end to end: resolve
// the user's session, fan out to the analysis engines and the context
// assembler concurrently, synthesize the partial results into insights,
// score and tier them, and persist the finished artifact.
//
// The orchestrator is built around partial-failure tolerance. Every external
// call (completion model, memory store) degrades to a documented default, so
// the caller always receives a complete, well-typed AdvancedHealthInsights,
// possibly with lower confidence or empty insight lists. The only errors it
// returns are misuse of the API itself.
package orchestrator

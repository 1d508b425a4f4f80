// Package archive contains concrete implementations of the analysis result
// archive: per-user history of AdvancedHealthInsights artifacts.
//
// The archive is the caller-facing history surface ("what did my last
// analyses say"), distinct from the memory store, which holds the
// conversational records the context assembler searches. Callers should
// depend on the Store interface rather than concrete types so they can
// substitute alternative persistence layers in tests or production.
package archive

// Package model defines the provider-agnostic abstraction for the external
// completion service the analysis engines and the synthesis step depend on.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Let engines issue concurrent completions without shared state
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (engines, orchestrator, assembler) remain
// decoupled from vendor SDKs.
package model

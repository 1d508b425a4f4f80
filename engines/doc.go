// Package engines provides the built-in analysis engines: bioenergetic,
// pattern and personalization. Each engine prompts a completion model with a
// domain-specific framing of the health data and memory context, then decodes
// the structured reply into its typed payload.
//
// Decoding never fails the request. Malformed model output degrades to the
// engine's documented default payload, salvaging recommendation bullets from
// semi-structured text when possible, so the orchestrator can always proceed
// with whatever subset of engines produced usable results.
package engines

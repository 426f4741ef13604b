// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     document parsing, structural validation, registry construction and
//     reference resolution.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting beyond the one-line short form
// used for golden files. Rendering lives in internal/diagfmt.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span of the offending XML element.
//   - Where – protocol/interface/message/argument coordinates, so the corpus
//     can be fixed without re-running with tracing enabled.
//   - Candidates – for ambiguity diagnostics, every surviving owner in the
//     registry's deterministic order.
//   - Notes – optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Phases use a diag.Reporter to decouple emission from storage:
//
//	diag.ReportError(r, diag.ResAmbiguousInterface, span, msg).
//		WithWhere(where).
//		WithCandidates(cands...).
//		Emit()
//
// diag.BagReporter aggregates diagnostics into a Bag, which supports sorting,
// deduplication, filtering and merging. Parallel phases write to one Bag per
// document and the driver merges them in document order; running the same
// corpus twice must produce identical output.
package diag

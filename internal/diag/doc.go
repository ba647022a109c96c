// Package diag defines the diagnostic model shared by the module-composition pass.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Kind – closed taxonomy (ImmutableViolation, InterfaceViolation,
//     NamespaceCollision, StructureException); every kind is fatal.
//   - Message – exact text; tests compare it verbatim.
//   - Hint – optional remediation ("add `uses: lib1` ...").
//   - Annotations – ordered spans, the offending node first.
//   - Prev – optional span of the earlier conflicting declaration.
//   - Notes – optional secondary spans (missing interface methods etc.).
//
// Spans stay as source.Span until the reporting boundary; Resolve turns them
// into module path, line, column and the exact source snippet.
//
// # Emitting diagnostics
//
// Checks construct a ReportBuilder (NewReportBuilder) or call Reporter.Report
// directly. BagReporter collects into a Bag; SyncReporter serialises reports
// coming from modules checked in parallel; FirstReporter remembers the first
// failure of a module for dependency summaries.
//
// Rendering lives in internal/diagfmt.
package diag

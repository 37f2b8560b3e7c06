// Package diag defines the diagnostic model shared by the manifest loader,
// the builder validation pass and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (MAN1003).
//   - Message: short, actionable text.
//   - Pos: manifest path and 1-based line, Line 0 when unknown.
//   - Notes: optional secondary positions.
//
// # Collecting
//
// Producers talk to a Reporter. BagReporter stores into a Bag, which enforces
// the --max-diagnostics limit; DedupReporter drops repeats before forwarding.
//
// Rendering for golden files and the short CLI form lives in format.go.
// Colored output is the CLI's job.
package diag

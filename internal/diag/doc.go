// Package diag defines the error and diagnostic model shared by every kpoet
// package.
//
// Failures are *Error values carrying a stable Code and the exact message
// reported to the caller. Codes are grouped in classes (template, structure,
// symbol, io, config, unit) and each class has a sentinel usable with
// errors.Is:
//
//	if errors.Is(err, diag.ErrTemplate) { ... }
//
// The driver converts per-unit failures into Diagnostic records and collects
// them in a Bag, which supports sorting and deduplication.
// FormatShortDiagnostics renders a stable one-line-per-diagnostic listing used
// by the CLI and by tests.
//
// Package diag performs no IO.
package diag

// Package receipt builds and persists human-auditable claim receipts.
//
// A Receipt is a denormalized record of a claim, its justification (Because),
// its caveats (But), the conclusion (So), the telemetry it was judged on,
// the tolerance threshold, and the producing model. Receipts are independent
// of frames and of the bus.
//
// Build applies defaults and copies its inputs; it performs no validation and
// never words the conclusion itself. DeriveConclusion is an optional helper
// for callers that want the conventional delta_scale vs threshold wording.
//
// WriteFile persists a receipt as pretty-printed JSON, creating the parent
// directory and overwriting any existing file. Persistence is never retried.
package receipt

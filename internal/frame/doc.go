// Package frame defines the unit of transmission sent to the bus.
//
// A Frame carries a small claim graph (nodes and edges), opaque morph
// records, numeric telemetry and a fixed-shape structural digest. Frames
// are plain values: they are built once per send, encoded canonically, and
// re-sent byte-identical on every retry.
//
// Construction is pure. The only field that varies between two frames built
// from identical inputs is TLogical, which is read from the frame clock
// (wall clock by default, injectable with WithClock).
//
// Validation is opt-in. Validate checks the frame against an embedded CUE
// schema and rejects duplicate node ids. CheckReferences verifies that edge
// endpoints resolve either inside the frame or against a caller-supplied
// set of previously sent node ids; the core send path never requires it.
package frame

// Package canonical provides the wire encoding and content identity for OLP.
//
// Every payload sent to the bus is serialized with Marshal. Its output
// follows the RFC 8785 layout (sorted keys, fixed number form, minimal
// escaping) without altering caller data. Canonical output has three
// properties the rest of the module depends on:
//   - the same value always yields the same bytes, so a retried frame is
//     re-sent byte-identical
//   - content hashes (Hash) are stable across processes and restarts
//   - golden files of wire bodies can be compared byte-for-byte
//
// Unlike a plain json.Marshal, object keys are sorted by UTF-16 code units,
// HTML characters are not escaped, and non-integral numbers use ECMAScript
// formatting (0.028, 1e-7, 1e+21). Integer literals are kept verbatim.
//
// Hash additionally NFC normalizes strings (MarshalNFC) so that ids do not
// depend on how a label was composed. The wire form never normalizes.
package canonical

// Package ir provides the literal value model shared by the pieces tree and
// its canonical snapshot encoding.
//
// This package contains value types and encoding only. Every other internal
// package may import ir; ir imports nothing internal.
//
// Key constraints:
//   - NO float types (use int64 for numbers) so snapshots stay byte-stable
//   - IRNull is explicit; a nil IRValue is never a valid value
//   - Canonical encoding follows RFC 8785 (UTF-16 key order, NFC strings)
package ir

// Package ir provides the literal value types that flow through the query
// core: bind parameters, literals held by value predicates, and insert rows.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types (values must encode canonically) - use int64 for numbers
//   - Null is an explicit value (Null{}), never a nil interface
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for content hashes
package ir

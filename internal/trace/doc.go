// Package trace records what happened during a harness chain, in order.
//
// A chain produces a Result: the sequence of mount, action, request and
// response events stamped with logical positions, plus any errors. Encode
// turns a Result into stable JSON for golden files and storage: object keys
// are sorted, strings are NFC normalised, HTML characters are not escaped,
// and floats are rejected so encodings never depend on float formatting.
package trace

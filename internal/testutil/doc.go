// Package testutil provides deterministic fixtures for harness chains.
//
// It contains the session mock factory (MockSession, MockUser, MockLogin)
// and the logical sequence counter that stamps pending requests and trace
// events with reproducible positions.
package testutil

// Package ui is a small, deterministic UI runtime that harness chains mount
// components into.
//
// It stands in for a browser component framework at the interface level:
//
//   - Loop is the reactivity scheduler. Work is queued as tasks, NextTick
//     callbacks run after pending updates flush, and timers run on virtual
//     time only when a caller settles the loop.
//   - Instance is a mounted Component. Components render markup, which the
//     instance parses into an HTML document queried with CSS selectors.
//   - Router resolves locations to views and runs navigation guards.
//   - Trigger, Click, Submit and FillForm simulate user interaction and
//     return only after one reactivity tick.
//   - Client is the outbound HTTP capability. The harness supplies one that
//     queues requests instead of sending them.
//
// Nothing in this package starts goroutines. A Loop and everything bound to
// it must be driven from a single goroutine.
package ui

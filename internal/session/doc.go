// Package session holds the authentication state a mounted application reads.
//
// A Store is passed explicitly to every mounted instance instead of living in
// a process-wide singleton. Tests create one Store per harness chain and call
// Reset between cases, which lets independent chains run side by side.
package session

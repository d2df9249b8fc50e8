// Package apptest holds harness helpers and fixtures for the demo app.
package apptest

// Package app is the demo application harness chains mount: a login view
// behind an auth guard, a project list, a user list and a nav bar.
//
// Views talk to the backend only through the instance's ui.Client, so every
// request they make becomes a pending request the harness can answer.
package app

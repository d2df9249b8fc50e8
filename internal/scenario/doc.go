// Package scenario runs declarative harness chains against the demo app.
//
// A scenario file is YAML:
//
//	name: navigation_fetch
//	description: Clicking the projects link loads both lists
//	login: true
//	route: /users
//	steps:
//	  - respond: {fixture: users, count: 2}
//	  - click: nav.navbar a.nav-projects
//	  - respond: {fixture: projects, count: 1}
//	  - respond: {fixture: administrators, count: 2}
//	expect:
//	  path: /
//	  count:
//	    "#project-list-table tbody tr": 1
//
// Files are decoded strictly, so unknown keys are errors, and then checked
// against an embedded CUE schema. Each file maps to one harness chain: the
// app is mounted at route (or routed through the login form when
// through_login is set), steps become Request and Respond declarations in
// order, and expect is checked against the settled instance.
//
// Scenarios run against a session clock fixed at Epoch, so traces are stable
// enough to compare with golden files.
package scenario

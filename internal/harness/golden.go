package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/seqharness/internal/trace"
)

// GoldenDir is where AssertGolden keeps snapshots, relative to the test's
// package directory.
const GoldenDir = "testdata/golden"

// AssertGolden compares a chain's trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run the test with -update.
func AssertGolden(t *testing.T, name string, result *trace.Result) {
	t.Helper()

	data, err := trace.Encode(name, result)
	if err != nil {
		t.Fatalf("encode trace %q: %v", name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/seqharness/internal/harness"
	"github.com/roach88/seqharness/internal/ui"
)

// Expectation kinds.
const (
	ExpectPath  = "path"
	ExpectCount = "count"
	ExpectText  = "text"
	ExpectError = "error"
)

// AssertionError is a failed expectation.
type AssertionError struct {
	Kind     string
	Expected string
	Actual   string

	// Diff is a go-cmp diff for map expectations, "" otherwise.
	Diff string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s", e.Kind)
	if e.Diff != "" {
		fmt.Fprintf(&buf, " (-want +got):\n%s", e.Diff)
		return buf.String()
	}
	fmt.Fprintf(&buf, ": expected %s, got %s", e.Expected, e.Actual)
	return buf.String()
}

// check compares the outcome of a chain with s.Expect.
func check(s *Scenario, inst *ui.Instance, chainErr error) []*AssertionError {
	var failures []*AssertionError
	exp := s.Expect

	switch {
	case exp.Error != "" && chainErr == nil:
		failures = append(failures, &AssertionError{Kind: ExpectError, Expected: exp.Error, Actual: "no error"})
	case exp.Error != "" && !harness.HasCode(chainErr, harness.ErrorCode(exp.Error)):
		failures = append(failures, &AssertionError{Kind: ExpectError, Expected: exp.Error, Actual: chainErr.Error()})
	case exp.Error == "" && chainErr != nil:
		failures = append(failures, &AssertionError{Kind: ExpectError, Expected: "no error", Actual: chainErr.Error()})
	}

	if inst == nil {
		return failures
	}

	if exp.Path != "" && inst.CurrentPath() != exp.Path {
		failures = append(failures, &AssertionError{
			Kind:     ExpectPath,
			Expected: fmt.Sprintf("%q", exp.Path),
			Actual:   fmt.Sprintf("%q", inst.CurrentPath()),
		})
	}

	if len(exp.Count) > 0 {
		got := make(map[string]int, len(exp.Count))
		for _, sel := range sortedKeys(exp.Count) {
			got[sel] = inst.Count(sel)
		}
		if diff := cmp.Diff(exp.Count, got); diff != "" {
			failures = append(failures, &AssertionError{Kind: ExpectCount, Diff: diff})
		}
	}

	if len(exp.Text) > 0 {
		got := make(map[string]string, len(exp.Text))
		for _, sel := range sortedKeys(exp.Text) {
			got[sel] = inst.Text(sel)
		}
		if diff := cmp.Diff(exp.Text, got); diff != "" {
			failures = append(failures, &AssertionError{Kind: ExpectText, Diff: diff})
		}
	}
	return failures
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

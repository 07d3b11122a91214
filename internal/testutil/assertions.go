package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertSteps checks that the printed plan holds exactly the given steps, in
// order. Each step is a label and its command line; "{dir}" in a command
// stands for the scenario directory.
func AssertSteps(t *testing.T, result *HarnessResult, steps ...[2]string) {
	t.Helper()

	var want strings.Builder
	for _, s := range steps {
		fmt.Fprintf(&want, "# Node '%s' generated the following line...\n%s\n\n", s[0], strings.ReplaceAll(s[1], "{dir}", result.Dir))
	}
	require.Equal(t, want.String(), result.Plan, "unexpected plan, logs:\n%s", result.LogOutput)
}

// AssertNodeSkipped checks that a node produced no step at all.
func AssertNodeSkipped(t *testing.T, result *HarnessResult, name string) {
	t.Helper()
	require.NotContains(t, result.Plan, fmt.Sprintf("# Node '%s'", name))
}

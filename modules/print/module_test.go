package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/plan"
)

func TestRecipe_Generate(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	steps := []plan.Step{
		{Label: "A", Command: node.Command{"ls", "-la"}},
		{Label: "skipped"},
		{Label: "grp1", Command: node.Command{"nuke", "-infile", "a.1.exr"}},
	}

	err := NewRecipe(&out).Generate(context.Background(), steps, "", true)

	require.NoError(t, err)
	assert.Equal(t, "# Node 'A' generated the following line...\nls -la\n\n"+
		"# Node 'grp1' generated the following line...\nnuke -infile a.1.exr\n\n", out.String())
}

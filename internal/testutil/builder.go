package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
	"github.com/vk/depends/internal/workflow"
)

// Builder edits a scenario's workflow, failing the test on any error.
type Builder struct {
	t   *testing.T
	ctx context.Context

	Dir      string
	Registry *registry.Registry
	Workflow *workflow.Workflow
}

// Node creates a node of the named kind.
func (b *Builder) Node(kind, name string) *node.Node {
	b.t.Helper()
	k, ok := b.Registry.Kind(kind)
	require.True(b.t, ok, "kind %s is not registered", kind)
	n, err := b.Workflow.CreateNode(b.ctx, k, name)
	require.NoError(b.t, err)
	return n
}

// Output sets an output slot. Relative paths are taken from the scenario
// directory.
func (b *Builder) Output(n *node.Node, output, slot, path string) {
	b.t.Helper()
	if path != "" && !filepath.IsAbs(path) && path[0] != '$' {
		path = filepath.Join(b.Dir, path)
	}
	require.NoError(b.t, b.Workflow.SetOutputValue(b.ctx, n, output, slot, path))
}

// Range sets the range of an output.
func (b *Builder) Range(n *node.Node, output, start, end string) {
	b.t.Helper()
	require.NoError(b.t, b.Workflow.SetOutputRange(b.ctx, n, output, &node.Range{Start: start, End: end}))
}

// Attribute sets an attribute value.
func (b *Builder) Attribute(n *node.Node, name, value string) {
	b.t.Helper()
	require.NoError(b.t, b.Workflow.SetAttribute(n, name, value))
}

// Link binds provider.output into consumer.input.
func (b *Builder) Link(provider *node.Node, output string, consumer *node.Node, input string) {
	b.t.Helper()
	require.NoError(b.t, b.Workflow.Link(b.ctx, provider, output, consumer, input))
}

// Group puts nodes in a new group and returns its name.
func (b *Builder) Group(nodes ...*node.Node) string {
	b.t.Helper()
	name, err := b.Workflow.Group(nodes...)
	require.NoError(b.t, err)
	return name
}

// Variable defines a workflow variable.
func (b *Builder) Variable(name, value string) {
	b.t.Helper()
	require.NoError(b.t, b.Workflow.Graph().Vars().Set(name, value, false))
}

// Touch creates empty files in the scenario directory.
func (b *Builder) Touch(names ...string) {
	b.t.Helper()
	for _, name := range names {
		path := filepath.Join(b.Dir, name)
		require.NoError(b.t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(b.t, os.WriteFile(path, nil, 0o644))
	}
}

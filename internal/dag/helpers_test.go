package dag

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// sourceKind produces an image and reads nothing.
type sourceKind struct{ node.NoHooks }

func (sourceKind) Name() string                    { return "Source" }
func (sourceKind) PerItem() bool                   { return false }
func (sourceKind) Inputs() []node.InputDef         { return nil }
func (sourceKind) Attributes() []node.AttributeDef { return nil }
func (sourceKind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: "Out", Type: "Image"}}
}
func (sourceKind) Execute(*node.Node, node.Packets, bool) ([]node.Command, error) { return nil, nil }

// passKind reads an image and writes one, frame by frame.
type passKind struct{ node.NoHooks }

func (passKind) Name() string                    { return "Pass" }
func (passKind) PerItem() bool                   { return true }
func (passKind) Attributes() []node.AttributeDef { return nil }
func (passKind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: "In", Type: "Image", Required: true}, {Name: "Aux", Type: "Image"}}
}
func (passKind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: "Out", Type: "Image", From: "In"}}
}
func (passKind) Execute(*node.Node, node.Packets, bool) ([]node.Command, error) { return nil, nil }

// addNodes creates one node per name; the first is a Source, the rest Pass.
func addNodes(t *testing.T, g *DAG, names ...string) []*node.Node {
	t.Helper()
	var out []*node.Node
	for i, name := range names {
		var k node.Kind = passKind{}
		if i == 0 {
			k = sourceKind{}
		}
		n := node.New(k, name, g.Types())
		require.NoError(t, g.AddNode(n, false))
		out = append(out, n)
	}
	return out
}

func newTestDAG() *DAG {
	return New(packet.NewTypes())
}

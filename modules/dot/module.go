// Package dot provides the Dot kind, a node without properties or commands
// used to tidy up how edges are laid out.
package dot

import (
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
)

const KindName = "Dot"

// Module implements the registry.Module interface for this package.
type Module struct{}

type Kind struct{ node.NoHooks }

func (Kind) Name() string                    { return KindName }
func (Kind) PerItem() bool                   { return false }
func (Kind) Inputs() []node.InputDef         { return nil }
func (Kind) Outputs() []node.OutputDef       { return nil }
func (Kind) Attributes() []node.AttributeDef { return nil }

func (Kind) Execute(*node.Node, node.Packets, bool) ([]node.Command, error) {
	return nil, nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind{})
}

package registry

import (
	"fmt"

	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// ReadKindName is the name of the kind reading existing data of a type.
func ReadKindName(typ string) string {
	return typ + "Read"
}

// readKind introduces existing data of one packet type into a workflow.
// It has a single output named after the type and runs no commands.
type readKind struct {
	node.NoHooks
	typ   string
	types *packet.Types
}

func (k *readKind) Name() string                    { return ReadKindName(k.typ) }
func (k *readKind) PerItem() bool                   { return false }
func (k *readKind) ReadsExisting() bool             { return true }
func (k *readKind) Inputs() []node.InputDef         { return nil }
func (k *readKind) Attributes() []node.AttributeDef { return nil }

func (k *readKind) Outputs() []node.OutputDef {
	return []node.OutputDef{{
		Name:        k.typ,
		Type:        k.typ,
		Description: fmt.Sprintf("Existing %s data.", k.typ),
	}}
}

func (k *readKind) Execute(*node.Node, node.Packets, bool) ([]node.Command, error) {
	return nil, nil
}

// Validate requires every slot of the type to name a file. Whether the
// files exist is decided when planning, which skips read nodes whose data
// is present.
func (k *readKind) Validate(n *node.Node) error {
	for _, slot := range k.types.Slots(k.typ) {
		v, err := n.OutputValue(k.typ, slot)
		if err != nil {
			return err
		}
		if v == "" {
			return fmt.Errorf("%s slot %q is not set", k.typ, slot)
		}
	}
	return nil
}

// AddReadKinds registers a read kind for every packet type that does not
// have one yet. It must run after all packet types are known.
func (r *Registry) AddReadKinds() {
	for _, typ := range r.types.Names() {
		if _, exists := r.kinds[ReadKindName(typ)]; exists {
			continue
		}
		r.RegisterKind(&readKind{typ: typ, types: r.types})
	}
}

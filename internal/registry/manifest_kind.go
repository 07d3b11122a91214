package registry

import (
	"context"
	"fmt"

	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/packet"
)

// manifestKind is a kind declared in a manifest. Its commands come from
// the manifest's templates.
type manifestKind struct {
	node.NoHooks
	def   *config.KindDefinition
	types *packet.Types
}

func (k *manifestKind) Name() string  { return k.def.Name }
func (k *manifestKind) PerItem() bool { return k.def.PerItem }

func (k *manifestKind) Inputs() []node.InputDef {
	defs := make([]node.InputDef, 0, len(k.def.Inputs))
	for _, in := range k.def.Inputs {
		defs = append(defs, node.InputDef{Name: in.Name, Type: in.Type, Required: in.Required, Description: in.Description})
	}
	return defs
}

func (k *manifestKind) Outputs() []node.OutputDef {
	defs := make([]node.OutputDef, 0, len(k.def.Outputs))
	for _, out := range k.def.Outputs {
		defs = append(defs, node.OutputDef{Name: out.Name, Type: out.Type, From: out.From, Description: out.Description})
	}
	return defs
}

func (k *manifestKind) Attributes() []node.AttributeDef {
	defs := make([]node.AttributeDef, 0, len(k.def.Attributes))
	for _, a := range k.def.Attributes {
		defs = append(defs, node.AttributeDef{Name: a.Name, Default: a.Default, File: a.File, Description: a.Description})
	}
	return defs
}

func (k *manifestKind) PreProcess(n *node.Node, in node.Packets) (node.Command, error) {
	return k.render(k.def.PreCommand, n, in, nil)
}

func (k *manifestKind) PostProcess(n *node.Node, in node.Packets) (node.Command, error) {
	return k.render(k.def.PostCommand, n, in, nil)
}

// Execute renders the command once, or once per frame of the node's item
// range when split.
func (k *manifestKind) Execute(n *node.Node, in node.Packets, split bool) ([]node.Command, error) {
	r, err := n.ItemRange()
	if err != nil {
		return nil, err
	}
	if !split || !k.def.PerItem || r == nil {
		cmd, err := k.render(k.def.Command, n, in, nil)
		if err != nil || len(cmd) == 0 {
			return nil, err
		}
		return []node.Command{cmd}, nil
	}

	cmds := make([]node.Command, 0, r.Len())
	for f := r.Start; f <= r.End; f++ {
		cmd, err := k.render(k.def.Command, n, in, &f)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (k *manifestKind) render(t config.Template, n *node.Node, in node.Packets, frame *int) (node.Command, error) {
	if t == nil {
		return nil, nil
	}
	scope, err := k.scope(n, in, frame)
	if err != nil {
		return nil, err
	}
	cmd, err := t.Render(context.Background(), scope)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Name(), err)
	}
	return cmd, nil
}

// scope collects what the templates of n may reference. With a frame set,
// file names are expanded to that frame.
func (k *manifestKind) scope(n *node.Node, in node.Packets, frame *int) (*config.Scope, error) {
	expand := func(s string) string {
		if frame == nil {
			return s
		}
		return framespec.ReplaceFrameSymbols(s, *frame)
	}

	s := &config.Scope{
		Attributes: make(map[string]string),
		Inputs:     make(map[string]map[string]string),
		Outputs:    make(map[string]map[string]string),
		Frame:      frame,
	}
	for _, a := range n.Attributes() {
		v, err := n.AttributeValue(a.Name)
		if err != nil {
			return nil, err
		}
		s.Attributes[a.Name] = v
	}
	for _, def := range n.Inputs() {
		slots := make(map[string]string)
		for _, slot := range k.types.Slots(def.Type) {
			slots[slot] = ""
		}
		if pk, ok := in[def.Name]; ok {
			for slot, v := range pk.Filenames {
				slots[slot] = expand(v)
			}
		}
		s.Inputs[def.Name] = slots
	}
	for _, out := range n.Outputs() {
		slots := make(map[string]string, len(out.Slots))
		for _, slot := range out.Slots {
			v, err := n.OutputValue(out.Name, slot)
			if err != nil {
				return nil, err
			}
			slots[slot] = expand(v)
		}
		s.Outputs[out.Name] = slots
	}

	r, err := n.ItemRange()
	if err != nil {
		return nil, err
	}
	s.Range = r
	return s, nil
}

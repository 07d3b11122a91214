// Package lightprobereduce provides the LightprobeReduce kind.
package lightprobereduce

import (
	"fmt"
	"strconv"

	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
)

const (
	KindName = "LightprobeReduce"
	port     = "Lightprobe"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind reduces a series of lightprobes to a smaller, unique set. The whole
// series is needed at once, so it cannot run per item.
type Kind struct{ node.NoHooks }

func (Kind) Name() string  { return KindName }
func (Kind) PerItem() bool { return false }

func (Kind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: port, Type: "Lightprobe", Required: true, Description: "A series of lightprobes to be reduced."}}
}

func (Kind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: port, Type: "Lightprobe", From: port}}
}

func (Kind) Attributes() []node.AttributeDef {
	return []node.AttributeDef{{Name: "resultCount", Description: "The resulting number of lightprobes."}}
}

func (Kind) Execute(n *node.Node, in node.Packets, _ bool) ([]node.Command, error) {
	pk, ok := in[port]
	if !ok {
		return nil, fmt.Errorf("input %s is not bound", port)
	}
	count, err := n.AttributeValue("resultCount")
	if err != nil {
		return nil, err
	}
	images, err := n.OutputSpec(port, "filename")
	if err != nil {
		return nil, err
	}
	transforms, err := n.OutputSpec(port, "transform")
	if err != nil {
		return nil, err
	}

	cmd := node.Command{"reduceLightprobes"}
	if pk.Range != nil {
		cmd = append(cmd, "-t", pk.Range.String())
	}
	cmd = append(cmd,
		"-probe", pk.Filenames["filename"],
		"-transform", pk.Filenames["transform"],
		"-resultCount", count,
		"-output", images.Template,
		"-outputTransforms", transforms.Template,
	)
	return []node.Command{cmd}, nil
}

func (Kind) Validate(n *node.Node) error {
	v, err := n.AttributeValue("resultCount")
	if err != nil {
		return err
	}
	if c, err := strconv.Atoi(v); err != nil || c <= 0 {
		return fmt.Errorf("resultCount must be a positive integer, got %q", v)
	}
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind{})
}

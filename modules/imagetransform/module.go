// Package imagetransform provides the ImageTransform kind, which scales an
// image sequence with nuke.
package imagetransform

import (
	"fmt"
	"strconv"

	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
)

const (
	KindName = "ImageTransform"
	port     = "ImageTypes"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind scales every frame of its input. It is per-item: in a group it
// emits one nuke call per frame.
type Kind struct{ node.NoHooks }

func (Kind) Name() string  { return KindName }
func (Kind) PerItem() bool { return true }

func (Kind) Attributes() []node.AttributeDef {
	return []node.AttributeDef{{Name: "scale", Default: "100", Description: "Scale in percent."}}
}

func (Kind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: port, Type: "Image", Required: true, Description: "Images to be transformed."}}
}

func (Kind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: port, Type: "Image", From: port}}
}

func (Kind) Execute(n *node.Node, in node.Packets, split bool) ([]node.Command, error) {
	scale, err := scaleFactor(n)
	if err != nil {
		return nil, err
	}
	src, err := inputSpec(n, in)
	if err != nil {
		return nil, err
	}
	dst, err := n.OutputSpec(port, "filename")
	if err != nil {
		return nil, err
	}

	if !split {
		cmd := node.Command{"nuke"}
		if src.Range != nil {
			cmd = append(cmd, "-t", src.Range.String())
		}
		cmd = append(cmd, "-infile", src.Template, "-scale", scale, "-outfile", dst.Template)
		return []node.Command{cmd}, nil
	}

	inFrames, outFrames := src.Frames(), dst.Frames()
	cmds := make([]node.Command, 0, len(inFrames))
	for i := 0; i < len(inFrames) && i < len(outFrames); i++ {
		cmds = append(cmds, node.Command{"nuke", "-infile", inFrames[i], "-scale", scale, "-outfile", outFrames[i]})
	}
	return cmds, nil
}

func (Kind) Validate(n *node.Node) error {
	_, err := scaleFactor(n)
	return err
}

// scaleFactor turns the percentage attribute into nuke's factor.
func scaleFactor(n *node.Node) (string, error) {
	v, err := n.AttributeValue("scale")
	if err != nil {
		return "", err
	}
	pct, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", fmt.Errorf("scale %q is not a number", v)
	}
	return strconv.FormatFloat(pct/100, 'f', -1, 64), nil
}

// inputSpec is the bound packet's filename, limited to the input's own
// range when one is set.
func inputSpec(n *node.Node, in node.Packets) (framespec.Spec, error) {
	pk, ok := in[port]
	if !ok {
		return framespec.Spec{}, fmt.Errorf("input %s is not bound", port)
	}
	spec := pk.Spec("filename")
	r, err := n.InputRange(port)
	if err != nil {
		return framespec.Spec{}, err
	}
	if r != nil {
		spec.Range = r
	}
	return spec, nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind{})
}

// Package colorspaceapply provides the ColorspaceApply kind, which moves
// images into a new colorspace using a curve file.
package colorspaceapply

import (
	"fmt"
	"os"

	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
)

const (
	KindName = "ColorspaceApply"
	port     = "ImageTypes"
	curve    = "colorCurveFile"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type Kind struct{ node.NoHooks }

func (Kind) Name() string  { return KindName }
func (Kind) PerItem() bool { return true }

func (Kind) Inputs() []node.InputDef {
	return []node.InputDef{{Name: port, Type: "Image", Required: true, Description: "A sequence or a single image to transform."}}
}

func (Kind) Outputs() []node.OutputDef {
	return []node.OutputDef{{Name: port, Type: "Image", From: port}}
}

func (Kind) Attributes() []node.AttributeDef {
	return []node.AttributeDef{{Name: curve, File: true, Description: "The colorspace curve file to apply."}}
}

func (Kind) Execute(n *node.Node, in node.Packets, split bool) ([]node.Command, error) {
	pk, ok := in[port]
	if !ok {
		return nil, fmt.Errorf("input %s is not bound", port)
	}
	src := pk.Spec("filename")
	if r, err := n.InputRange(port); err != nil {
		return nil, err
	} else if r != nil {
		src.Range = r
	}
	dst, err := n.OutputSpec(port, "filename")
	if err != nil {
		return nil, err
	}
	c, err := n.AttributeValue(curve)
	if err != nil {
		return nil, err
	}

	if split {
		inFrames, outFrames := src.Frames(), dst.Frames()
		cmds := make([]node.Command, 0, len(inFrames))
		for i := 0; i < len(inFrames) && i < len(outFrames); i++ {
			cmds = append(cmds, node.Command{"colorspaceApply", "-in", inFrames[i], "-colorspace", c, "-out", outFrames[i]})
		}
		return cmds, nil
	}

	var cmd node.Command
	if src.Range != nil {
		cmd = append(cmd, "range", "-t", src.Range.String())
	}
	cmd = append(cmd, "colorspaceApply", "-in", src.Template, "-colorspace", c, "-out", dst.Template)
	return []node.Command{cmd}, nil
}

// Validate requires the curve file to exist.
func (Kind) Validate(n *node.Node) error {
	c, err := n.AttributeValue(curve)
	if err != nil {
		return err
	}
	if c == "" {
		return fmt.Errorf("%s is not set", curve)
	}
	if _, err := os.Stat(c); err != nil {
		return fmt.Errorf("%s: %w", curve, err)
	}
	return nil
}

// Register registers the kind with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Kind{})
}

// Package textfile provides small kinds working on text files: Ls lists a
// directory into a file and Awk filters one file into another.
package textfile

import (
	"fmt"
	"strings"

	"github.com/vk/depends/internal/node"
	"github.com/vk/depends/internal/registry"
)

const (
	LsName  = "Ls"
	AwkName = "Awk"
	port    = "File"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var fileOutput = node.OutputDef{Name: port, Type: "TextFile"}

type Ls struct{ node.NoHooks }

func (Ls) Name() string              { return LsName }
func (Ls) PerItem() bool             { return false }
func (Ls) Inputs() []node.InputDef   { return nil }
func (Ls) Outputs() []node.OutputDef { return []node.OutputDef{fileOutput} }

func (Ls) Attributes() []node.AttributeDef {
	return []node.AttributeDef{
		{Name: "listPath", Description: "A path to run ls on."},
		{Name: "long", Default: "True", Description: "Add -la to the ls command."},
	}
}

func (Ls) Execute(n *node.Node, _ node.Packets, _ bool) ([]node.Command, error) {
	out, err := n.OutputValue(port, "filename")
	if err != nil {
		return nil, err
	}
	long, err := n.AttributeValue("long")
	if err != nil {
		return nil, err
	}
	path, err := n.AttributeValue("listPath")
	if err != nil {
		return nil, err
	}

	cmd := node.Command{"ls"}
	if !strings.EqualFold(long, "false") {
		cmd = append(cmd, "-la")
	}
	if path != "" {
		cmd = append(cmd, path)
	}
	return []node.Command{append(cmd, ">", out)}, nil
}

type Awk struct{ node.NoHooks }

func (Awk) Name() string  { return AwkName }
func (Awk) PerItem() bool { return false }

func (Awk) Inputs() []node.InputDef {
	return []node.InputDef{{Name: port, Type: "TextFile", Required: true, Description: "A file to run awk on."}}
}

func (Awk) Outputs() []node.OutputDef {
	out := fileOutput
	out.From = port
	return []node.OutputDef{out}
}

func (Awk) Attributes() []node.AttributeDef {
	return []node.AttributeDef{{Name: "command", Description: "The awk program to execute."}}
}

func (Awk) Execute(n *node.Node, in node.Packets, _ bool) ([]node.Command, error) {
	pk, ok := in[port]
	if !ok {
		return nil, fmt.Errorf("input %s is not bound", port)
	}
	program, err := n.AttributeValue("command")
	if err != nil {
		return nil, err
	}
	out, err := n.OutputValue(port, "filename")
	if err != nil {
		return nil, err
	}
	return []node.Command{{"awk", "'" + program + "'", pk.Filenames["filename"], ">", out}}, nil
}

// Register registers the kinds with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind(Ls{})
	r.RegisterKind(Awk{})
}

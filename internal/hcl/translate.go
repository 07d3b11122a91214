// This file translates the HCL schema structs into the format-agnostic
// manifest model of the config package.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/depends/internal/config"
)

func translatePacket(p *packetBlock) *config.PacketDefinition {
	return &config.PacketDefinition{
		Name:        p.Name,
		Parent:      p.Parent,
		Slots:       p.Slots,
		Description: p.Description,
	}
}

// translateKind converts a kind block and checks that its command
// templates only reference properties the kind declares.
func translateKind(k *kindBlock, source string) (*config.KindDefinition, error) {
	def := &config.KindDefinition{
		Name:        k.Name,
		Description: k.Description,
		PerItem:     k.PerItem,
		Source:      source,
	}
	for _, in := range k.Inputs {
		def.Inputs = append(def.Inputs, &config.InputDefinition{
			Name:        in.Name,
			Type:        in.Type,
			Required:    in.Required,
			Description: in.Description,
		})
	}
	for _, out := range k.Outputs {
		def.Outputs = append(def.Outputs, &config.OutputDefinition{
			Name:        out.Name,
			Type:        out.Type,
			From:        out.From,
			Description: out.Description,
		})
	}
	for _, a := range k.Attributes {
		def.Attributes = append(def.Attributes, &config.AttributeDefinition{
			Name:        a.Name,
			Default:     a.Default,
			File:        a.File,
			Description: a.Description,
		})
	}

	templates := []struct {
		name string
		expr hcl.Expression
		dst  *config.Template
	}{
		{"command", k.Command, &def.Command},
		{"pre_command", k.PreCommand, &def.PreCommand},
		{"post_command", k.PostCommand, &def.PostCommand},
	}
	for _, t := range templates {
		if omitted(t.expr) {
			continue
		}
		if err := checkReferences(def, t.expr); err != nil {
			return nil, fmt.Errorf("kind %q, %s: %w", k.Name, t.name, err)
		}
		*t.dst = &exprTemplate{kind: k.Name, expr: t.expr}
	}
	return def, nil
}

// omitted reports whether an optional expression was left out. gohcl fills
// missing attributes with a static null expression.
func omitted(expr hcl.Expression) bool {
	if expr == nil {
		return true
	}
	if len(expr.Variables()) > 0 {
		return false
	}
	val, diags := expr.Value(nil)
	return !diags.HasErrors() && val.IsNull()
}

// checkReferences rejects traversals into unknown scope roots or
// undeclared properties.
func checkReferences(def *config.KindDefinition, expr hcl.Expression) error {
	declared := map[string]map[string]bool{
		"attr":   {},
		"input":  {},
		"output": {},
	}
	for _, a := range def.Attributes {
		declared["attr"][a.Name] = true
	}
	for _, in := range def.Inputs {
		declared["input"][in.Name] = true
	}
	for _, out := range def.Outputs {
		declared["output"][out.Name] = true
	}

	for _, tr := range expr.Variables() {
		root := tr.RootName()
		switch root {
		case "range", "frame":
			continue
		case "attr", "input", "output":
		default:
			return fmt.Errorf("unknown reference %q", root)
		}
		if len(tr) < 2 {
			continue
		}
		step, ok := tr[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if !declared[root][step.Name] {
			return fmt.Errorf("reference to undeclared %s %q", root, step.Name)
		}
	}
	return nil
}

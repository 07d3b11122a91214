// Package node defines workflow nodes and the kinds that give them
// behaviour.
package node

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/packet"
	"github.com/vk/depends/internal/variables"
)

var (
	ErrNoSuchInput     = errors.New("node: no such input")
	ErrNoSuchOutput    = errors.New("node: no such output")
	ErrNoSuchAttribute = errors.New("node: no such attribute")
	ErrNoSuchSlot      = errors.New("node: no such output slot")
)

// Substituter expands variable references in user supplied strings.
type Substituter interface {
	Substitute(s string) string
}

// Node is a single vertex of a workflow: a kind plus the user's settings
// for it.
type Node struct {
	id   uuid.UUID
	name string
	kind Kind

	inputs     []*Input
	outputs    []*Output
	attributes []*Attribute

	// vars is the table of the workflow the node belongs to. It is nil for a
	// node not yet added to a graph, in which case strings are returned raw.
	vars Substituter
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._]`)

// CleanName replaces every character a node name may not hold with '_'.
func CleanName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// New creates a node of kind with a fresh identifier. types supplies the
// slots of each output.
func New(kind Kind, name string, types *packet.Types) *Node {
	return NewWithID(kind, name, uuid.New(), types)
}

// NewWithID is New with a caller chosen identifier, used when restoring
// saved workflows.
func NewWithID(kind Kind, name string, id uuid.UUID, types *packet.Types) *Node {
	n := &Node{id: id, name: CleanName(name), kind: kind}
	for _, def := range kind.Inputs() {
		n.inputs = append(n.inputs, &Input{InputDef: def})
	}
	for _, def := range kind.Outputs() {
		slots := types.FamilySlots(def.Type)
		values := make(map[string]string, len(slots))
		for _, s := range slots {
			values[s] = ""
		}
		n.outputs = append(n.outputs, &Output{OutputDef: def, Slots: slots, Values: values})
	}
	for _, def := range kind.Attributes() {
		n.attributes = append(n.attributes, &Attribute{AttributeDef: def, Value: def.Default})
	}
	return n
}

func (n *Node) ID() uuid.UUID      { return n.id }
func (n *Node) Name() string       { return n.name }
func (n *Node) Kind() Kind         { return n.kind }
func (n *Node) KindName() string   { return n.kind.Name() }
func (n *Node) Inputs() []*Input   { return n.inputs }
func (n *Node) Outputs() []*Output { return n.outputs }

func (n *Node) Attributes() []*Attribute { return n.attributes }

// SetName renames the node. Uniqueness is the graph's concern.
func (n *Node) SetName(name string) {
	n.name = CleanName(name)
}

// SetVars attaches the variable table used for substitution.
func (n *Node) SetVars(v Substituter) {
	n.vars = v
}

// Substitute expands variables in s using the node's table.
func (n *Node) Substitute(s string) string {
	if n.vars == nil {
		return s
	}
	return n.vars.Substitute(s)
}

func (n *Node) Input(name string) (*Input, error) {
	for _, in := range n.inputs {
		if in.Name == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchInput, n.name, name)
}

func (n *Node) Output(name string) (*Output, error) {
	for _, out := range n.outputs {
		if out.Name == name {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchOutput, n.name, name)
}

func (n *Node) Attribute(name string) (*Attribute, error) {
	for _, a := range n.attributes {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchAttribute, n.name, name)
}

// InputRange returns the resolved frame range of an input.
func (n *Node) InputRange(name string) (*framespec.Range, error) {
	in, err := n.Input(name)
	if err != nil {
		return nil, err
	}
	return in.Range.Resolve(n.Substitute)
}

func (n *Node) SetInputRange(name string, r *Range) error {
	in, err := n.Input(name)
	if err != nil {
		return err
	}
	in.Range = r.clone()
	return nil
}

// OutputValue returns the substituted filename template of an output slot.
func (n *Node) OutputValue(output, slot string) (string, error) {
	out, err := n.Output(output)
	if err != nil {
		return "", err
	}
	v, ok := out.Values[slot]
	if !ok {
		return "", fmt.Errorf("%w: %s.%s.%s", ErrNoSuchSlot, n.name, output, slot)
	}
	return n.Substitute(v), nil
}

func (n *Node) SetOutputValue(output, slot, value string) error {
	out, err := n.Output(output)
	if err != nil {
		return err
	}
	if _, ok := out.Values[slot]; !ok {
		return fmt.Errorf("%w: %s.%s.%s", ErrNoSuchSlot, n.name, output, slot)
	}
	out.Values[slot] = value
	return nil
}

// OutputRange returns the resolved frame range of an output.
func (n *Node) OutputRange(name string) (*framespec.Range, error) {
	out, err := n.Output(name)
	if err != nil {
		return nil, err
	}
	return out.Range.Resolve(n.Substitute)
}

func (n *Node) SetOutputRange(name string, r *Range) error {
	out, err := n.Output(name)
	if err != nil {
		return err
	}
	out.Range = r.clone()
	return nil
}

// OutputSpec returns the resolved frame specification of an output slot.
func (n *Node) OutputSpec(output, slot string) (framespec.Spec, error) {
	v, err := n.OutputValue(output, slot)
	if err != nil {
		return framespec.Spec{}, err
	}
	r, err := n.OutputRange(output)
	if err != nil {
		return framespec.Spec{}, fmt.Errorf("%s.%s: %w", n.name, output, err)
	}
	return framespec.Spec{Template: v, Range: r}, nil
}

// AttributeValue returns the substituted value of an attribute.
func (n *Node) AttributeValue(name string) (string, error) {
	a, err := n.Attribute(name)
	if err != nil {
		return "", err
	}
	return n.Substitute(a.Value), nil
}

func (n *Node) SetAttributeValue(name, value string) error {
	a, err := n.Attribute(name)
	if err != nil {
		return err
	}
	a.Value = value
	return nil
}

func (n *Node) AttributeRange(name string) (*framespec.Range, error) {
	a, err := n.Attribute(name)
	if err != nil {
		return nil, err
	}
	return a.Range.Resolve(n.Substitute)
}

func (n *Node) SetAttributeRange(name string, r *Range) error {
	a, err := n.Attribute(name)
	if err != nil {
		return err
	}
	a.Range = r.clone()
	return nil
}

// AffectedOutput returns the output derived from the named input, or nil.
func (n *Node) AffectedOutput(input string) *Output {
	for _, out := range n.outputs {
		if out.From != "" && out.From == input {
			return out
		}
	}
	return nil
}

// AffectingInput returns the input the named output is derived from, or
// nil.
func (n *Node) AffectingInput(output string) *Input {
	out, err := n.Output(output)
	if err != nil || out.From == "" {
		return nil
	}
	in, err := n.Input(out.From)
	if err != nil {
		return nil
	}
	return in
}

// ItemRange returns the frames a per-item node works through: the range of
// its first ranged input, or failing that of its first ranged output. It
// is nil when neither is set.
func (n *Node) ItemRange() (*framespec.Range, error) {
	for _, in := range n.inputs {
		if in.Range != nil {
			return n.InputRange(in.Name)
		}
	}
	for _, out := range n.outputs {
		if out.Range != nil {
			return n.OutputRange(out.Name)
		}
	}
	return nil, nil
}

// VariableRefs lists the workflow and environment variables referenced by
// the node's settings.
func (n *Node) VariableRefs() (workflow, env []string) {
	add := func(s string) {
		w, e := variables.Present(s)
		workflow = append(workflow, w...)
		env = append(env, e...)
	}
	addRange := func(r *Range) {
		if r != nil {
			add(r.Start)
			add(r.End)
		}
	}
	for _, in := range n.inputs {
		addRange(in.Range)
	}
	for _, out := range n.outputs {
		for _, s := range out.Slots {
			add(out.Values[s])
		}
		addRange(out.Range)
	}
	for _, a := range n.attributes {
		add(a.Value)
		addRange(a.Range)
	}
	return workflow, env
}

// Duplicate returns a copy of the node with a new identifier and name. The
// copy is not attached to any graph.
func (n *Node) Duplicate(name string) *Node {
	cp := &Node{id: uuid.New(), name: CleanName(name), kind: n.kind}
	for _, in := range n.inputs {
		cp.inputs = append(cp.inputs, &Input{InputDef: in.InputDef, Range: in.Range.clone()})
	}
	for _, out := range n.outputs {
		values := make(map[string]string, len(out.Values))
		for k, v := range out.Values {
			values[k] = v
		}
		cp.outputs = append(cp.outputs, &Output{
			OutputDef: out.OutputDef,
			Slots:     append([]string(nil), out.Slots...),
			Values:    values,
			Range:     out.Range.clone(),
		})
	}
	for _, a := range n.attributes {
		cp.attributes = append(cp.attributes, &Attribute{AttributeDef: a.AttributeDef, Value: a.Value, Range: a.Range.clone()})
	}
	return cp
}

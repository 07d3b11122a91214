package node

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/depends/internal/framespec"
)

// Range is a frame range as typed by the user. Either bound may reference
// variables, so it is only turned into numbers on demand.
type Range struct {
	Start string
	End   string
}

// NewRange builds a Range from frame numbers.
func NewRange(r framespec.Range) *Range {
	return &Range{Start: strconv.Itoa(r.Start), End: strconv.Itoa(r.End)}
}

// Resolve substitutes variables with subst and parses the bounds. A range
// with an empty bound resolves to nil.
func (r *Range) Resolve(subst func(string) string) (*framespec.Range, error) {
	if r == nil {
		return nil, nil
	}
	start, end := strings.TrimSpace(subst(r.Start)), strings.TrimSpace(subst(r.End))
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return nil, fmt.Errorf("range start %q: %w", start, err)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return nil, fmt.Errorf("range end %q: %w", end, err)
	}
	return &framespec.Range{Start: s, End: e}, nil
}

func (r *Range) clone() *Range {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

// Input is a node's instance of an InputDef. The packet an input reads is
// not stored here; bindings are owned by the graph.
type Input struct {
	InputDef
	Range *Range
}

// Output is a node's instance of an OutputDef. Values holds one filename
// template per slot of the output's type family, in Slots order.
type Output struct {
	OutputDef
	Slots  []string
	Values map[string]string
	Range  *Range
}

// Attribute is a node's instance of an AttributeDef.
type Attribute struct {
	AttributeDef
	Value string
	Range *Range
}

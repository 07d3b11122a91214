package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/framespec"
	"github.com/vk/depends/internal/node"
)

var (
	ErrUndefinedVariable  = errors.New("workflow variable is not defined")
	ErrUndefinedEnv       = errors.New("environment variable is not defined")
	ErrMissingInput       = errors.New("required input is not connected")
	ErrTypeMismatch       = errors.New("incoming packet type is not accepted")
	ErrBadRange           = errors.New("frame range is not numeric")
	ErrRangeExceeded      = errors.New("input range exceeds the upstream range")
	ErrRangeMismatch      = errors.New("input range differs from the output range")
	ErrOutputDir          = errors.New("output directory does not exist")
	ErrOutputNotWritable  = errors.New("output directory is not writable")
	ErrFrameRangeMissing  = errors.New("frame symbols without a frame range")
	ErrKindValidation     = errors.New("kind validation failed")
	ErrGroupNotPerItem    = errors.New("group member cannot run per item")
	ErrGroupRangeMismatch = errors.New("group output ranges differ")
	ErrMultipleGroups     = errors.New("node belongs to more than one group")
	ErrGroupSplit         = errors.New("node both reads from and feeds members of a group")
)

// ValidationError locates a validation failure on a node property.
type ValidationError struct {
	Node     string
	Property string
	Err      error
}

func (e *ValidationError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("node %s: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("node %s, %s: %v", e.Node, e.Property, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(n *node.Node, property string, err error) error {
	return &ValidationError{Node: n.Name(), Property: property, Err: err}
}

// Validate checks that nodes can be planned. It stops at the first problem.
func (p *Planner) Validate(ctx context.Context, nodes []*node.Node) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating nodes.", "count", len(nodes))

	vars := p.g.Vars()
	for _, n := range nodes {
		workflow, _ := n.VariableRefs()
		for _, name := range workflow {
			if !vars.Defined(name) {
				return invalid(n, "", fmt.Errorf("%w: $%s", ErrUndefinedVariable, name))
			}
		}
	}
	for _, n := range nodes {
		_, env := n.VariableRefs()
		for _, name := range env {
			if _, ok := vars.Env(name); !ok {
				return invalid(n, "", fmt.Errorf("%w: $$%s", ErrUndefinedEnv, name))
			}
		}
	}

	for _, n := range nodes {
		if err := p.validateInputs(n); err != nil {
			return err
		}
		if err := validateOutputs(n); err != nil {
			return err
		}
		if err := n.Kind().Validate(n); err != nil {
			return invalid(n, "", fmt.Errorf("%w: %w", ErrKindValidation, err))
		}
	}

	if err := p.validateGroups(nodes); err != nil {
		return err
	}
	logger.Debug("Validation passed.")
	return nil
}

func (p *Planner) validateInputs(n *node.Node) error {
	grouped := p.g.GroupCount(n.ID()) > 0
	for _, in := range n.Inputs() {
		prop := "input " + in.Name
		pk, err := p.InputPacket(n, in.Name)
		if err != nil {
			return invalid(n, prop, err)
		}
		if pk == nil {
			if in.Required {
				return invalid(n, prop, ErrMissingInput)
			}
			continue
		}
		if !p.g.Types().IsA(pk.Type, in.Type) {
			return invalid(n, prop, fmt.Errorf("%w: %s into %s", ErrTypeMismatch, pk.Type, in.Type))
		}

		r, err := n.InputRange(in.Name)
		if err != nil {
			return invalid(n, prop, fmt.Errorf("%w: %w", ErrBadRange, err))
		}
		if r == nil {
			continue
		}
		if pk.Range == nil || !pk.Range.Contains(*r) {
			return invalid(n, prop, fmt.Errorf("%w: %s not within %s", ErrRangeExceeded, r, describe(pk.Range)))
		}
		if !grouped {
			continue
		}
		if out := n.AffectedOutput(in.Name); out != nil {
			or, err := n.OutputRange(out.Name)
			if err != nil {
				return invalid(n, "output "+out.Name, fmt.Errorf("%w: %w", ErrBadRange, err))
			}
			if or == nil || *or != *r {
				return invalid(n, prop, fmt.Errorf("%w: %s vs output %s %s", ErrRangeMismatch, r, out.Name, describe(or)))
			}
		}
	}
	return nil
}

func validateOutputs(n *node.Node) error {
	existing := false
	if r, ok := n.Kind().(node.Reader); ok {
		existing = r.ReadsExisting()
	}
	for _, out := range n.Outputs() {
		prop := "output " + out.Name
		r, err := n.OutputRange(out.Name)
		if err != nil {
			return invalid(n, prop, fmt.Errorf("%w: %w", ErrBadRange, err))
		}
		for _, slot := range out.Slots {
			v, err := n.OutputValue(out.Name, slot)
			if err != nil {
				return invalid(n, prop, err)
			}
			if v == "" {
				continue
			}
			dir := filepath.Dir(v)
			if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
				return invalid(n, prop, fmt.Errorf("%w: %s", ErrOutputDir, dir))
			}
			if !existing && !writable(dir) {
				return invalid(n, prop, fmt.Errorf("%w: %s", ErrOutputNotWritable, dir))
			}
			if framespec.HasFrameSymbols(v) && r == nil {
				return invalid(n, prop, fmt.Errorf("%w: %s", ErrFrameRangeMissing, v))
			}
		}
	}
	return nil
}

// validateGroups checks every group with at least one member among nodes.
func (p *Planner) validateGroups(nodes []*node.Node) error {
	planned := make(map[uuid.UUID]bool, len(nodes))
	for _, n := range nodes {
		planned[n.ID()] = true
	}

	for _, grp := range p.g.Groups() {
		relevant := false
		for _, id := range grp.Nodes {
			relevant = relevant || planned[id]
		}
		if !relevant {
			continue
		}

		var want *framespec.Range
		for _, id := range grp.Nodes {
			n, ok := p.g.Node(id)
			if !ok {
				continue
			}
			if !n.Kind().PerItem() {
				return invalid(n, "", fmt.Errorf("%w: %s in %s", ErrGroupNotPerItem, n.KindName(), grp.Name))
			}
			for _, out := range n.Outputs() {
				r, err := n.OutputRange(out.Name)
				if err != nil {
					return invalid(n, "output "+out.Name, fmt.Errorf("%w: %w", ErrBadRange, err))
				}
				if r == nil {
					return invalid(n, "output "+out.Name, fmt.Errorf("%w: %s has no range", ErrGroupRangeMismatch, grp.Name))
				}
				if want == nil {
					want = r
				} else if *want != *r {
					return invalid(n, "output "+out.Name, fmt.Errorf("%w: %s: %s vs %s", ErrGroupRangeMismatch, grp.Name, r, want))
				}
			}
		}
	}

	for _, n := range nodes {
		if p.g.GroupCount(n.ID()) > 1 {
			return invalid(n, "", ErrMultipleGroups)
		}
	}

	// A non-member between two planned members cannot be ordered around the
	// merged batch.
	for _, grp := range p.g.Groups() {
		members := make(map[uuid.UUID]bool, len(grp.Nodes))
		for _, id := range grp.Nodes {
			if planned[id] {
				members[id] = true
			}
		}
		if len(members) == 0 {
			continue
		}
		for _, n := range nodes {
			if members[n.ID()] {
				continue
			}
			reads := false
			for _, prov := range p.g.AllProviders(n.ID()) {
				reads = reads || members[prov.ID()]
			}
			feeds := false
			for _, cons := range p.g.AllConsumers(n.ID()) {
				feeds = feeds || members[cons.ID()]
			}
			if reads && feeds {
				return invalid(n, "", fmt.Errorf("%w: %s", ErrGroupSplit, grp.Name))
			}
		}
	}
	return nil
}

func describe(r *framespec.Range) string {
	if r == nil {
		return "no range"
	}
	return r.String()
}

// Package snapshot converts a workflow graph to and from its persisted
// form. Field names are part of the file format.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrMalformed = errors.New("snapshot: malformed document")

// Snapshot is the complete persisted state of a workflow.
type Snapshot struct {
	Nodes     []Node     `json:"NODES"`
	Edges     []Edge     `json:"EDGES"`
	Groups    []Group    `json:"GROUPS"`
	Variables []Variable `json:"VARIABLE_SUBSTITIONS"`

	// Editor layout, carried through untouched.
	NodeMeta       json.RawMessage `json:"NODE_META,omitempty"`
	ConnectionMeta json.RawMessage `json:"CONNECTION_META,omitempty"`
}

type Node struct {
	Name       string     `json:"NAME"`
	Type       string     `json:"TYPE"`
	UUID       string     `json:"UUID"`
	Stale      string     `json:"STALE"`
	Inputs     []Property `json:"INPUTS"`
	Outputs    []Output   `json:"OUTPUTS"`
	Attributes []Property `json:"ATTRIBUTES"`
}

// Property is an input or attribute. For inputs Value holds the location
// string of the bound output, or "".
type Property struct {
	Name  string `json:"NAME"`
	Value string `json:"VALUE"`
	Range *Range `json:"RANGE"`
}

// Output holds one path per slot.
type Output struct {
	Name  string            `json:"NAME"`
	Value map[string]string `json:"VALUE"`
	Range *Range            `json:"RANGE"`
}

type Edge struct {
	From string `json:"FROM"`
	To   string `json:"TO"`
}

type Group struct {
	Name  string   `json:"NAME"`
	Nodes []string `json:"NODES"`
}

type Variable struct {
	Name  string `json:"NAME"`
	Value string `json:"VALUE"`
}

// Range is a [start, end] pair. Bounds are kept as strings because they
// may reference variables; numbers are accepted when decoding.
type Range [2]string

func (r *Range) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: range: %v", ErrMalformed, err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: range needs 2 bounds, got %d", ErrMalformed, len(raw))
	}
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			r[i] = s
			continue
		}
		var f *float64
		if err := json.Unmarshal(item, &f); err != nil {
			return fmt.Errorf("%w: range bound %s", ErrMalformed, item)
		}
		if f != nil {
			r[i] = strconv.FormatFloat(*f, 'f', -1, 64)
		}
	}
	return nil
}

// UnmarshalJSON also accepts the variables under the correctly spelled
// VARIABLE_SUBSTITUTIONS key.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	type plain Snapshot
	aux := struct {
		*plain
		Alt []Variable `json:"VARIABLE_SUBSTITUTIONS"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if s.Variables == nil {
		s.Variables = aux.Alt
	}
	return nil
}

// file is the on-disk envelope.
type file struct {
	DAG *Snapshot `json:"DAG"`
}

// Encode writes s wrapped in its file envelope.
func Encode(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(file{DAG: s})
}

// Decode reads a snapshot, with or without its file envelope.
func Decode(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.DAG != nil {
		return f.DAG, nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &s, nil
}

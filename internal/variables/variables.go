// Package variables implements the workflow-scoped substitution table.
//
// Strings handed to a node may reference workflow variables as $NAME and
// process environment variables as $$NAME, where NAME is made of upper-case
// letters, digits and underscores. A backslash before a dollar sign escapes
// it. Names that cannot be resolved are left in place verbatim.
package variables

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	ErrExists   = errors.New("variables: variable already exists")
	ErrNotFound = errors.New("variables: variable does not exist")
	ErrReadOnly = errors.New("variables: variable is read-only")
)

// Variable is a single entry of the table.
type Variable struct {
	Name     string
	Value    string
	ReadOnly bool
}

// Table maps variable names to values. A Table is owned by a single
// workflow and is not safe for concurrent use.
type Table struct {
	entries map[string]*Variable

	// LookupEnv resolves $$NAME references. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// New returns an empty table bound to the process environment.
func New() *Table {
	return &Table{
		entries:   make(map[string]*Variable),
		LookupEnv: os.LookupEnv,
	}
}

// Add creates an empty, writable variable.
func (t *Table) Add(name string) error {
	if _, ok := t.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	t.entries[name] = &Variable{Name: name}
	return nil
}

// Remove deletes a variable. Read-only variables cannot be removed.
func (t *Table) Remove(name string) error {
	v, ok := t.entries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if v.ReadOnly {
		return fmt.Errorf("%w: %q", ErrReadOnly, name)
	}
	delete(t.entries, name)
	return nil
}

// Set assigns a value, creating the variable if needed. Once a variable is
// read-only its value can no longer change.
func (t *Table) Set(name, value string, readOnly bool) error {
	v, ok := t.entries[name]
	if !ok {
		t.entries[name] = &Variable{Name: name, Value: value, ReadOnly: readOnly}
		return nil
	}
	if v.ReadOnly && v.Value != value {
		return fmt.Errorf("%w: %q", ErrReadOnly, name)
	}
	v.Value = value
	v.ReadOnly = v.ReadOnly || readOnly
	return nil
}

// Value returns the value of a defined variable.
func (t *Table) Value(name string) (string, error) {
	v, ok := t.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v.Value, nil
}

// Defined reports whether name is in the table.
func (t *Table) Defined(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Names returns every variable name, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Changeable returns the writable variables sorted by name. These are the
// entries persisted with a workflow; read-only ones are session constants.
func (t *Table) Changeable() []Variable {
	var out []Variable
	for _, name := range t.Names() {
		if v := t.entries[name]; !v.ReadOnly {
			out = append(out, *v)
		}
	}
	return out
}

// ClearChangeable drops every writable variable.
func (t *Table) ClearChangeable() {
	for name, v := range t.entries {
		if !v.ReadOnly {
			delete(t.entries, name)
		}
	}
}

// CloneReadOnly returns a new table holding only the read-only entries.
func (t *Table) CloneReadOnly() *Table {
	c := New()
	c.LookupEnv = t.LookupEnv
	for name, v := range t.entries {
		if v.ReadOnly {
			cp := *v
			c.entries[name] = &cp
		}
	}
	return c
}

// Env resolves an environment variable through LookupEnv, or through the
// process environment when LookupEnv is unset.
func (t *Table) Env(name string) (string, bool) {
	if t.LookupEnv == nil {
		return os.LookupEnv(name)
	}
	return t.LookupEnv(name)
}

// Substitute expands every resolvable reference in s. Escaped dollar signs
// in s are unescaped; substituted values are copied as they are.
func (t *Table) Substitute(s string) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	var b strings.Builder
	for _, tok := range scan(s) {
		switch tok.kind {
		case tokenWorkflow:
			if v, ok := t.entries[tok.name]; ok {
				b.WriteString(v.Value)
				continue
			}
		case tokenEnv:
			if v, ok := t.Env(tok.name); ok {
				b.WriteString(v)
				continue
			}
		case tokenText:
			b.WriteString(strings.ReplaceAll(tok.text, `\$`, "$"))
			continue
		}
		b.WriteString(tok.text)
	}
	return b.String()
}

// Present returns the workflow and environment variable names referenced by
// s, in order of appearance.
func Present(s string) (workflow, env []string) {
	for _, tok := range scan(s) {
		switch tok.kind {
		case tokenWorkflow:
			workflow = append(workflow, tok.name)
		case tokenEnv:
			env = append(env, tok.name)
		}
	}
	return workflow, env
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenWorkflow
	tokenEnv
)

type token struct {
	kind tokenKind
	text string
	name string
}

// scan splits s into literal text and variable references. A run of dollar
// signs preceded by a backslash, or longer than two, is literal.
func scan(s string) []token {
	var toks []token
	start := 0
	i := 0
	for i < len(s) {
		if s[i] != '$' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '$' {
			j++
		}
		run := j - i
		escaped := i > 0 && s[i-1] == '\\'
		k := j
		for k < len(s) && isNameByte(s[k]) {
			k++
		}
		if escaped || run > 2 || k == j {
			i = j
			continue
		}
		if i > start {
			toks = append(toks, token{kind: tokenText, text: s[start:i]})
		}
		kind := tokenWorkflow
		if run == 2 {
			kind = tokenEnv
		}
		toks = append(toks, token{kind: kind, text: s[i:k], name: s[j:k]})
		start, i = k, k
	}
	if start < len(s) {
		toks = append(toks, token{kind: tokenText, text: s[start:]})
	}
	return toks
}

func isNameByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// ValidName reports whether name can be referenced as $NAME.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

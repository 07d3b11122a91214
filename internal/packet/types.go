package packet

import (
	"errors"
	"fmt"
)

var (
	ErrTypeExists    = errors.New("packet: type already registered")
	ErrUnknownType   = errors.New("packet: unknown type")
	ErrUnknownParent = errors.New("packet: parent type is not registered")
)

// Type describes a kind of data flowing along edges. Slots lists the
// filename slots the type adds on top of those inherited from Parent.
type Type struct {
	Name        string
	Parent      string
	Slots       []string
	Description string
}

// Types is the registry of packet types. Registration must happen before
// any node is created; lookups are read-only afterwards.
type Types struct {
	byName map[string]*Type
	order  []string
}

// NewTypes returns a registry preloaded with the built-in types.
func NewTypes() *Types {
	r := &Types{byName: make(map[string]*Type)}
	for _, t := range Builtins() {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Builtins returns the packet types every workflow knows about.
func Builtins() []Type {
	return []Type{
		{Name: "TextFile", Slots: []string{"filename"}, Description: "A plain text file."},
		{Name: "Image", Slots: []string{"filename"}, Description: "An image or image sequence."},
		{Name: "Lightprobe", Parent: "Image", Slots: []string{"transform"}, Description: "A spherical environment capture."},
		{Name: "Pointcloud", Slots: []string{"filename", "transform"}, Description: "A point cloud."},
		{Name: "BoundingBox", Slots: []string{"filename", "transform"}, Description: "An axis aligned bounding volume."},
		{Name: "Lightfield", Slots: []string{"filename", "boundingBox", "transform"}, Description: "A captured lightfield."},
		{Name: "Colorspace", Slots: []string{"filename"}, Description: "A colour transform description."},
	}
}

// Register adds a type. Its parent must already be registered.
func (r *Types) Register(t Type) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownType)
	}
	if _, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrTypeExists, t.Name)
	}
	if t.Parent != "" {
		if _, ok := r.byName[t.Parent]; !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownParent, t.Parent, t.Name)
		}
	}
	cp := t
	cp.Slots = append([]string(nil), t.Slots...)
	r.byName[t.Name] = &cp
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the type registered under name.
func (r *Types) Lookup(name string) (Type, bool) {
	t, ok := r.byName[name]
	if !ok {
		return Type{}, false
	}
	return *t, true
}

// Names returns every registered type in registration order.
func (r *Types) Names() []string {
	return append([]string(nil), r.order...)
}

// Slots returns the full slot list of a type, inherited slots first.
func (r *Types) Slots(name string) []string {
	t, ok := r.byName[name]
	if !ok {
		return nil
	}
	var slots []string
	if t.Parent != "" {
		slots = r.Slots(t.Parent)
	}
	for _, s := range t.Slots {
		if !contains(slots, s) {
			slots = append(slots, s)
		}
	}
	return slots
}

// Subtypes returns every transitive subtype of name, excluding name itself,
// in registration order.
func (r *Types) Subtypes(name string) []string {
	var out []string
	for _, n := range r.order {
		if n != name && r.IsA(n, name) {
			out = append(out, n)
		}
	}
	return out
}

// Family returns name followed by all of its subtypes. An input declared
// with type name accepts any member of its family.
func (r *Types) Family(name string) []string {
	return append([]string{name}, r.Subtypes(name)...)
}

// IsA reports whether name equals ancestor or descends from it.
func (r *Types) IsA(name, ancestor string) bool {
	for cur := name; cur != ""; {
		if cur == ancestor {
			return true
		}
		t, ok := r.byName[cur]
		if !ok {
			return false
		}
		cur = t.Parent
	}
	return false
}

// FamilySlots is the union of slots over the family of name. An output
// declared with type name carries a value for each of them so that it can
// hold any subtype that flows through it.
func (r *Types) FamilySlots(name string) []string {
	var slots []string
	for _, n := range r.Family(name) {
		for _, s := range r.Slots(n) {
			if !contains(slots, s) {
				slots = append(slots, s)
			}
		}
	}
	return slots
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

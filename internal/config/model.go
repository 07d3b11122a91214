package config

// Model is the unified, format-agnostic representation of every loaded
// manifest.
type Model struct {
	Packets []*PacketDefinition
	Kinds   []*KindDefinition
}

// PacketDefinition declares a packet type. Parent, when set, must name a
// type registered earlier or built in.
type PacketDefinition struct {
	Name        string
	Parent      string
	Slots       []string
	Description string
}

// KindDefinition is the format-agnostic representation of a node kind
// manifest.
type KindDefinition struct {
	Name        string
	Description string
	PerItem     bool
	Inputs      []*InputDefinition
	Outputs     []*OutputDefinition
	Attributes  []*AttributeDefinition

	// Command renders the main command. For a split execution it is
	// rendered once per frame with Scope.Frame set.
	Command Template
	// PreCommand and PostCommand are optional.
	PreCommand  Template
	PostCommand Template

	// Source is the manifest file the kind was read from.
	Source string
}

// InputDefinition defines a single input of a kind.
type InputDefinition struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// OutputDefinition defines a single output of a kind. From names the input
// the output is derived from.
type OutputDefinition struct {
	Name        string
	Type        string
	From        string
	Description string
}

// AttributeDefinition defines a single attribute of a kind.
type AttributeDefinition struct {
	Name        string
	Default     string
	File        bool
	Description string
}

// Kind returns the kind definition named name, or nil.
func (m *Model) Kind(name string) *KindDefinition {
	for _, k := range m.Kinds {
		if k.Name == name {
			return k
		}
	}
	return nil
}

package node

import "github.com/vk/depends/internal/packet"

// Command is one command line, program first.
type Command []string

// Packets maps input names to the packet bound to each input. Unbound
// inputs are absent.
type Packets map[string]*packet.DataPacket

// InputDef declares an input a kind accepts. The input accepts packets of
// Type and any of its subtypes.
type InputDef struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// OutputDef declares an output a kind produces. From optionally names the
// input this output is derived from; the output then takes on the concrete
// subtype arriving at that input, as well as its frame range.
type OutputDef struct {
	Name        string
	Type        string
	From        string
	Description string
}

// AttributeDef declares a free-form parameter of a kind.
type AttributeDef struct {
	Name        string
	Default     string
	File        bool
	Description string
}

// Kind is the behaviour shared by every node of one type. Kinds are
// stateless; per-node data lives on the Node.
type Kind interface {
	// Name is the type name under which the kind is registered.
	Name() string
	Inputs() []InputDef
	Outputs() []OutputDef
	Attributes() []AttributeDef

	// PerItem reports whether the kind can emit one command per frame, which
	// is required for grouped execution.
	PerItem() bool

	// PreProcess and PostProcess return an optional single command run
	// before and after the main commands. An empty command means none.
	PreProcess(n *Node, in Packets) (Command, error)
	PostProcess(n *Node, in Packets) (Command, error)

	// Execute returns the main commands. With split set the kind returns
	// one command per frame of its input range.
	Execute(n *Node, in Packets, split bool) ([]Command, error)

	// Validate performs kind specific checks on a node before planning.
	Validate(n *Node) error
}

// Reader is implemented by kinds whose outputs name existing data instead
// of files the node writes.
type Reader interface {
	ReadsExisting() bool
}

// NoHooks can be embedded by kinds that need neither pre nor post
// processing and have no extra validation.
type NoHooks struct{}

func (NoHooks) PreProcess(*Node, Packets) (Command, error)  { return nil, nil }
func (NoHooks) PostProcess(*Node, Packets) (Command, error) { return nil, nil }
func (NoHooks) Validate(*Node) error                        { return nil }

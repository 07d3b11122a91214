package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a manifest file may hold.
type fileRoot struct {
	Packets []*packetBlock `hcl:"packet,block"`
	Kinds   []*kindBlock   `hcl:"kind,block"`
	Remain  hcl.Body       `hcl:",remain"`
}

// packetBlock declares a packet type:
//
//	packet "Mesh" {
//	  parent = "Pointcloud"
//	  slots  = ["filename", "uvs"]
//	}
type packetBlock struct {
	Name        string   `hcl:"name,label"`
	Parent      string   `hcl:"parent,optional"`
	Slots       []string `hcl:"slots,optional"`
	Description string   `hcl:"description,optional"`
}

// kindBlock declares a node kind. Commands are expressions evaluated when a
// plan is built, with attr, input, output, range and frame in scope.
type kindBlock struct {
	Name        string            `hcl:"name,label"`
	Description string            `hcl:"description,optional"`
	PerItem     bool              `hcl:"per_item,optional"`
	Inputs      []*inputBlock     `hcl:"input,block"`
	Outputs     []*outputBlock    `hcl:"output,block"`
	Attributes  []*attributeBlock `hcl:"attribute,block"`
	Command     hcl.Expression    `hcl:"command,optional"`
	PreCommand  hcl.Expression    `hcl:"pre_command,optional"`
	PostCommand hcl.Expression    `hcl:"post_command,optional"`
}

type inputBlock struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type"`
	Required    bool   `hcl:"required,optional"`
	Description string `hcl:"description,optional"`
}

type outputBlock struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type"`
	From        string `hcl:"from,optional"`
	Description string `hcl:"description,optional"`
}

type attributeBlock struct {
	Name        string `hcl:"name,label"`
	Default     string `hcl:"default,optional"`
	File        bool   `hcl:"file,optional"`
	Description string `hcl:"description,optional"`
}

package hcl

import (
	"context"
	"fmt"

	"github.com/gammazero/toposort"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/ctxlog"
	"github.com/vk/depends/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths. Kind names must be unique across
// files; packet definitions are returned parents first.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()
	seenKinds := make(map[string]string)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Packets {
			model.Packets = append(model.Packets, translatePacket(p))
		}
		for _, k := range root.Kinds {
			if prev, ok := seenKinds[k.Name]; ok {
				return nil, fmt.Errorf("kind %q in %s is already declared in %s", k.Name, file, prev)
			}
			def, err := translateKind(k, file)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			seenKinds[k.Name] = file
			model.Kinds = append(model.Kinds, def)
		}
	}

	model.Packets, err = orderPackets(model.Packets)
	if err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "packets", len(model.Packets), "kinds", len(model.Kinds))
	return model, nil
}

// orderPackets sorts definitions so that a parent declared in the manifests
// comes before its children. Definitions whose parent is not among them
// keep their file order at the front.
func orderPackets(defs []*config.PacketDefinition) ([]*config.PacketDefinition, error) {
	byName := make(map[string]*config.PacketDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	var out []*config.PacketDefinition
	var edges []toposort.Edge
	for _, d := range defs {
		if _, ok := byName[d.Parent]; ok && d.Parent != d.Name {
			edges = append(edges, toposort.Edge{d.Parent, d.Name})
			continue
		}
		out = append(out, d)
	}
	if len(edges) == 0 {
		return out, nil
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("packet types have circular parents: %w", err)
	}
	placed := make(map[string]bool, len(out))
	for _, d := range out {
		placed[d.Name] = true
	}
	for _, name := range sorted {
		if n := name.(string); !placed[n] {
			out = append(out, byName[n])
			placed[n] = true
		}
	}
	return out, nil
}

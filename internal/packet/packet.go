// Package packet holds the typed data records that flow between nodes.
package packet

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/depends/internal/framespec"
)

var ErrBadLocation = errors.New("packet: malformed location")

// Source identifies the node producing a packet.
type Source interface {
	ID() uuid.UUID
	Name() string
}

// DataPacket is the value an output hands to the inputs bound to it.
type DataPacket struct {
	Type   string
	Source Source
	Output string
	// Filenames maps each slot of Type to its filename template, with
	// variables already substituted.
	Filenames map[string]string
	Range     *framespec.Range
}

// Spec returns the frame specification for a slot.
func (p *DataPacket) Spec(slot string) framespec.Spec {
	return framespec.Spec{Template: p.Filenames[slot], Range: p.Range}
}

// Location returns the string an input stores to reference this packet.
func (p *DataPacket) Location() string {
	return Location(p.Source.ID(), p.Output)
}

// DataPresent reports whether every file of the given slots exists on disk.
// With no slots every slot of the packet is checked. An unset slot counts as
// missing.
func (p *DataPacket) DataPresent(slots ...string) bool {
	if len(slots) == 0 {
		for s := range p.Filenames {
			slots = append(slots, s)
		}
	}
	if len(slots) == 0 {
		return false
	}
	for _, slot := range slots {
		if p.Filenames[slot] == "" {
			return false
		}
		for _, f := range p.Spec(slot).Frames() {
			if _, err := os.Stat(f); err != nil {
				return false
			}
		}
	}
	return true
}

// Location formats the reference to a node output, "::<uuid>:<output>".
func Location(id uuid.UUID, output string) string {
	return "::" + id.String() + ":" + output
}

// DisplayLocation is the human readable variant of Location, using the node
// name in place of its identifier.
func DisplayLocation(nodeName, output string) string {
	return "::" + nodeName + ":" + output
}

// ParseLocation splits a location string into node identifier and output
// name.
func ParseLocation(s string) (uuid.UUID, string, error) {
	rest, ok := strings.CutPrefix(s, "::")
	if !ok {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrBadLocation, s)
	}
	idStr, output, ok := strings.Cut(rest, ":")
	if !ok || output == "" {
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrBadLocation, s)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %q: %v", ErrBadLocation, s, err)
	}
	return id, output, nil
}

// Package registry provides the central "glue" for the module system.
//
// The Registry maps the kind names stored in workflows to the Go values that
// implement them, holds the packet type registry and the output recipes. It
// is filled from compiled modules and from the manifest model, then
// validated so that every kind refers only to known packet types and to its
// own properties.
package registry

// Package hcl provides the concrete HCL implementation of the manifest
// loading interfaces defined in the `config` package. It is responsible for
// file parsing, HCL-to-model translation and rendering command templates
// through cty.
package hcl

// Package config defines the format-agnostic model of node-kind and packet
// type manifests, along with the Loader and Template interfaces a concrete
// manifest format implements.
//
// The `config.Model` is what the registry turns into kinds. Concrete
// implementations, such as for HCL, live in separate packages.
package config

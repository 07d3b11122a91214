// Package app contains the core application logic. It loads the manifests
// into a registry, opens a saved workflow and plans it, decoupled from any
// specific entrypoint like a CLI.
package app

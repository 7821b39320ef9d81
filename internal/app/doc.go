// Package app contains the core application logic. It wires configuration,
// logging and the command runner into the build and test pipelines,
// decoupled from any specific entrypoint like a CLI or server.
package app

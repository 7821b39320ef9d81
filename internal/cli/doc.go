// Package cli is responsible for the command-line interface: the cobra
// command tree, flag validation and mapping failures to exit codes.
package cli

// Package rpm implements the build collaborators on top of tito, git, rpm
// and yum. Every tool is invoked through a shell.Runner, so the same code
// drives the local host or a remote builder.
package rpm

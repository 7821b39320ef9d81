// Package shell runs command lines and captures their combined output and
// exit status. Local runs through sh on this host; SSH runs on a remote
// host. Both honor a per-command timeout and report it as TimedOut rather
// than as an error.
package shell

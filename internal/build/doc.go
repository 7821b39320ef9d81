// Package build walks a phase plan and builds every package in order,
// installing artifacts that later phases need.
//
// Two modes exist. ModeFull treats any failure as fatal and stops the
// walk. ModeIncremental favours partial progress: a failed package is
// inspected for missing external build requirements, which are installed
// for the next run, or else re-tagged from its latest commit and rebuilt
// once. Packages that still fail are recorded and the walk continues.
//
// The package never runs tools itself; it is driven through the Builder,
// Installer and VersionTagger interfaces.
package build

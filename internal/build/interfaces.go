package build

import (
	"context"

	"github.com/vk/originci/internal/catalog"
)

// Builder produces the artifacts of one package from its source directory.
type Builder interface {
	// Build returns the paths of the artifacts produced.
	Build(ctx context.Context, pkg catalog.Package) ([]string, error)
}

// Installer talks to the package manager of the build host.
type Installer interface {
	// Install installs or upgrades built artifact files in place.
	Install(ctx context.Context, pkg catalog.Package, paths []string) error
	// InstallNames installs packages by name from configured repositories.
	InstallNames(ctx context.Context, names []string, skipBroken bool) error
	// Missing returns the subset of names not installed on the host.
	Missing(ctx context.Context, names []string) ([]string, error)
}

// VersionTagger creates release tags so a package can be rebuilt under a
// fresh version.
type VersionTagger interface {
	NextVersion(current, commit string) string
	LatestCommit(ctx context.Context, pkg catalog.Package) (string, error)
	Tag(ctx context.Context, pkg catalog.Package, version string) error
	// Tagged reports whether the package has ever been tagged for release.
	Tagged(ctx context.Context, pkg catalog.Package) (bool, error)
}

package rpm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/shell"
)

// shortCommitLen is the commit prefix length used in generated versions.
const shortCommitLen = 7

// Tagger tags releases with tito and reads history with git.
type Tagger struct {
	runner shell.Runner
}

// NewTagger returns a tagger using runner.
func NewTagger(runner shell.Runner) *Tagger {
	return &Tagger{runner: runner}
}

// NextVersion increments the last numeric component of current and
// appends the short commit id, so `1.2.3` at commit abcdef123 becomes
// `1.2.4.git.abcdef1`. A previous git suffix is replaced.
func (t *Tagger) NextVersion(current, commit string) string {
	base, _, _ := strings.Cut(current, ".git.")
	parts := strings.Split(base, ".")
	for i := len(parts) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(parts[i]); err == nil {
			parts[i] = strconv.Itoa(n + 1)
			break
		}
	}
	next := strings.Join(parts, ".")
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	if commit == "" {
		return next
	}
	return next + ".git." + commit
}

// LatestCommit returns the last commit touching the package directory.
func (t *Tagger) LatestCommit(ctx context.Context, pkg catalog.Package) (string, error) {
	res, err := run(ctx, t.runner, shell.Command{
		Line: "git log --pretty=format:%H --max-count=1 .",
		Dir:  pkg.Dir,
	})
	if err != nil {
		return "", fmt.Errorf("failed to read latest commit of %s: %w", pkg.Name, err)
	}
	commit := strings.TrimSpace(res.Output)
	if commit == "" {
		return "", fmt.Errorf("no commits found for %s in %s", pkg.Name, pkg.Dir)
	}
	return commit, nil
}

// Tag creates a tito release tag for version.
func (t *Tagger) Tag(ctx context.Context, pkg catalog.Package, version string) error {
	line := "tito tag --accept-auto-changelog --use-version=" + shell.Quote(version)
	if _, err := run(ctx, t.runner, shell.Command{Line: line, Dir: pkg.Dir}); err != nil {
		return fmt.Errorf("failed to tag %s: %w", pkg.Name, err)
	}
	return nil
}

// Tagged reports whether any git tag mentions the package name.
func (t *Tagger) Tagged(ctx context.Context, pkg catalog.Package) (bool, error) {
	res, err := t.runner.Run(ctx, shell.Command{
		Line: "git tag | grep -q -F -- " + shell.Quote(pkg.Name),
		Dir:  pkg.Dir,
	})
	if err != nil {
		return false, err
	}
	switch {
	case res.TimedOut:
		return false, fmt.Errorf("listing tags of %s timed out", pkg.Name)
	case res.ExitCode == 0:
		return true, nil
	case res.ExitCode == 1:
		return false, nil
	default:
		return false, &CommandError{Line: "git tag", Result: res}
	}
}

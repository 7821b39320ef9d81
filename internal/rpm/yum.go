package rpm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/shell"
)

// notInstalledRegex matches what `rpm -q --whatprovides` prints for a name
// or virtual provide with no installed provider.
var notInstalledRegex = regexp.MustCompile(`(?m)^(?:no package provides (.+)|package (.+) is not installed)$`)

// Yum installs packages with rpm and yum.
type Yum struct {
	runner shell.Runner
	// Timeout bounds a single yum or rpm invocation.
	Timeout time.Duration
}

// NewYum returns an installer using runner.
func NewYum(runner shell.Runner) *Yum {
	return &Yum{runner: runner}
}

// Install upgrades the given RPM files of pkg in place. When rpm refuses,
// the installed package is dropped from the rpm database only and the
// files are installed again through yum, which resolves new requirements.
func (y *Yum) Install(ctx context.Context, pkg catalog.Package, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	files := shell.QuoteAll(paths)
	_, err := run(ctx, y.runner, shell.Command{Line: "rpm -Uvh --force " + files, Timeout: y.Timeout})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("unable to install rpms: %w", err)
	}

	ctxlog.FromContext(ctx).Warn("Upgrade failed, reinstalling through yum.", "package", pkg.InstallName(), "error", err)
	line := fmt.Sprintf("rpm -e --justdb --nodeps %s; yum install -y %s", shell.Quote(pkg.InstallName()), files)
	if _, ferr := run(ctx, y.runner, shell.Command{Line: line, Timeout: y.Timeout}); ferr != nil {
		return fmt.Errorf("unable to install rpms: %w", errors.Join(err, ferr))
	}
	return nil
}

// InstallNames installs the names that are not installed yet.
func (y *Yum) InstallNames(ctx context.Context, names []string, skipBroken bool) error {
	missing, err := y.Missing(ctx, names)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	args := "-y"
	if skipBroken {
		args += " --skip-broken"
	}
	ctxlog.FromContext(ctx).Info("Installing packages.", "packages", missing, "skip_broken", skipBroken)
	line := fmt.Sprintf("yum install %s %s", args, shell.QuoteAll(missing))
	if _, err := run(ctx, y.runner, shell.Command{Line: line, Timeout: y.Timeout}); err != nil {
		return fmt.Errorf("unable to install required packages: %w", err)
	}
	return nil
}

// Missing queries rpm and returns the names that are not installed, in
// input order.
func (y *Yum) Missing(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	// rpm -q exits non-zero when anything is missing, so only runner
	// errors are fatal here.
	res, err := y.runner.Run(ctx, shell.Command{Line: "rpm -q --whatprovides " + shell.QuoteAll(names), Timeout: y.Timeout})
	if err != nil {
		return nil, err
	}
	if res.TimedOut {
		return nil, &CommandError{Line: "rpm -q", Result: res}
	}

	notInstalled := map[string]bool{}
	for _, m := range notInstalledRegex.FindAllStringSubmatch(res.Output, -1) {
		notInstalled[strings.TrimSpace(m[1]+m[2])] = true
	}
	var missing []string
	for _, name := range names {
		if notInstalled[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

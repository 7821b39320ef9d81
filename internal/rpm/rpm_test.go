package rpm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/shell"
	"github.com/vk/originci/internal/testutil"
)

var broker = catalog.Package{Name: "openshift-origin-broker", Version: "1.5.2", Dir: "/src/broker"}

func TestTito_Build(t *testing.T) {
	t.Run("returns binary rpms from the output directory", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("find ", testutil.Pass("/tmp/tito/noarch/openshift-origin-broker-1.5.2-1.noarch.rpm\n/tmp/tito/noarch/openshift-origin-broker-util-1.5.2-1.noarch.rpm\n"))
		tito := NewTito(runner, "")
		tito.Timeout = time.Hour

		artifacts, err := tito.Build(context.Background(), broker)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"/tmp/tito/noarch/openshift-origin-broker-1.5.2-1.noarch.rpm",
			"/tmp/tito/noarch/openshift-origin-broker-util-1.5.2-1.noarch.rpm",
		}, artifacts)

		calls := runner.Calls()
		require.Len(t, calls, 3)
		assert.Equal(t, "rm -rf '/tmp/tito' && mkdir -p '/tmp/tito'", calls[0].Line)
		assert.Equal(t, shell.Command{Line: "tito build --rpm --test", Dir: "/src/broker", Timeout: time.Hour}, calls[1])
		assert.Equal(t, "find '/tmp/tito' -name 'openshift-origin-broker*.rpm' ! -name '*.src.rpm' | sort", calls[2].Line)
	})

	t.Run("failed build carries the output tail", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("tito build", testutil.Fail("error: Bad exit status from /var/tmp/rpm-tmp (%build)", 1))

		_, err := NewTito(runner, "/tmp/out").Build(context.Background(), broker)
		var cerr *CommandError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, 1, cerr.Result.ExitCode)
		assert.ErrorContains(t, err, "Bad exit status")
	})

	t.Run("no rpms is an error", func(t *testing.T) {
		_, err := NewTito(testutil.NewFakeRunner(), "").Build(context.Background(), broker)
		assert.ErrorContains(t, err, "tito produced no rpms")
	})
}

func TestYum(t *testing.T) {
	ctx := context.Background()

	t.Run("install upgrades files in place", func(t *testing.T) {
		runner := testutil.NewFakeRunner()
		require.NoError(t, NewYum(runner).Install(ctx, broker, []string{"/tmp/tito/noarch/a.rpm", "/tmp/tito/noarch/b.rpm"}))
		assert.Equal(t, []string{"rpm -Uvh --force '/tmp/tito/noarch/a.rpm' '/tmp/tito/noarch/b.rpm'"}, runner.Lines())

		require.NoError(t, NewYum(runner).Install(ctx, broker, nil))
		assert.Len(t, runner.Calls(), 1)
	})

	t.Run("install falls back to yum when the upgrade is refused", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("rpm -Uvh", testutil.Fail("error: Failed dependencies", 1))
		require.NoError(t, NewYum(runner).Install(ctx, broker, []string{"/tmp/tito/noarch/a.rpm"}))
		assert.Equal(t, []string{
			"rpm -Uvh --force '/tmp/tito/noarch/a.rpm'",
			"rpm -e --justdb --nodeps 'openshift-origin-broker'; yum install -y '/tmp/tito/noarch/a.rpm'",
		}, runner.Lines())
	})

	t.Run("install fails when the fallback fails", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("rpm -Uvh", testutil.Fail("error: Failed dependencies", 1)).
			On("rpm -e", testutil.Fail("Error: Nothing to do", 1))
		err := NewYum(runner).Install(ctx, broker, []string{"/tmp/tito/noarch/a.rpm"})
		assert.ErrorContains(t, err, "unable to install rpms")
		assert.ErrorContains(t, err, "Failed dependencies")
		assert.ErrorContains(t, err, "Nothing to do")
	})

	t.Run("missing parses rpm query output", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("rpm -q", testutil.Fail(
			"ruby-1.9.3-1.fc19.x86_64\nno package provides mongodb\nno package provides rubygem-rails\n", 2))

		missing, err := NewYum(runner).Missing(ctx, []string{"ruby", "rubygem-rails", "mongodb"})
		require.NoError(t, err)
		assert.Equal(t, []string{"rubygem-rails", "mongodb"}, missing)
		assert.Equal(t, []string{"rpm -q --whatprovides 'ruby' 'rubygem-rails' 'mongodb'"}, runner.Lines())
	})

	t.Run("missing resolves virtual provides", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("rpm -q", testutil.Fail(
			"rubygem-rake-0.9.2.2-41.fc19.noarch\nno package provides ruby193-rubygem(json)\n", 1))

		missing, err := NewYum(runner).Missing(ctx, []string{"rubygem(rake)", "ruby193-rubygem(json)"})
		require.NoError(t, err)
		assert.Equal(t, []string{"ruby193-rubygem(json)"}, missing)
	})

	t.Run("install names only installs what is missing", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("rpm -q", testutil.Fail("ruby-1.9.3\nno package provides mongodb\n", 1))

		require.NoError(t, NewYum(runner).InstallNames(ctx, []string{"ruby", "mongodb"}, true))
		lines := runner.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "yum install -y --skip-broken 'mongodb'", lines[1])
	})

	t.Run("install names is a no-op when all are installed", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("rpm -q", testutil.Pass("ruby-1.9.3\n"))
		require.NoError(t, NewYum(runner).InstallNames(ctx, []string{"ruby"}, false))
		assert.Len(t, runner.Calls(), 1)
	})

	t.Run("yum failure", func(t *testing.T) {
		runner := testutil.NewFakeRunner().
			On("rpm -q", testutil.Fail("package mongodb is not installed\n", 1)).
			On("yum install", testutil.Fail("No package mongodb available.", 1))
		err := NewYum(runner).InstallNames(ctx, []string{"mongodb"}, false)
		assert.ErrorContains(t, err, "unable to install required packages")
	})
}

func TestTagger_NextVersion(t *testing.T) {
	testCases := []struct {
		current  string
		commit   string
		expected string
	}{
		{"1.2.3", "abcdef1234567890", "1.2.4.git.abcdef1"},
		{"1.2.4.git.abcdef1", "0123456789", "1.2.5.git.0123456"},
		{"0.9", "", "0.10"},
		{"1.0.beta", "abc", "1.1.beta.git.abc"},
	}
	tagger := NewTagger(nil)
	for _, tc := range testCases {
		t.Run(tc.current, func(t *testing.T) {
			assert.Equal(t, tc.expected, tagger.NextVersion(tc.current, tc.commit))
		})
	}
}

func TestTagger(t *testing.T) {
	ctx := context.Background()

	t.Run("latest commit", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("git log", testutil.Pass("4f2a9c0d1e\n"))
		commit, err := NewTagger(runner).LatestCommit(ctx, broker)
		require.NoError(t, err)
		assert.Equal(t, "4f2a9c0d1e", commit)
		assert.Equal(t, "/src/broker", runner.Calls()[0].Dir)
	})

	t.Run("tag", func(t *testing.T) {
		runner := testutil.NewFakeRunner()
		require.NoError(t, NewTagger(runner).Tag(ctx, broker, "1.5.3.git.4f2a9c0"))
		assert.Equal(t, []string{"tito tag --accept-auto-changelog --use-version='1.5.3.git.4f2a9c0'"}, runner.Lines())
	})

	t.Run("tagged", func(t *testing.T) {
		runner := testutil.NewFakeRunner().On("git tag", testutil.Pass(""), testutil.Fail("", 1), testutil.Fail("fatal: not a git repository", 128))
		tagger := NewTagger(runner)

		ok, err := tagger.Tagged(ctx, broker)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = tagger.Tagged(ctx, broker)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = tagger.Tagged(ctx, broker)
		assert.ErrorContains(t, err, "not a git repository")
	})
}

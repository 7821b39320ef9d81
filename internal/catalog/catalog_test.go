package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokerSpec = `
%global gem_name openshift-origin-controller
%{!?scl:%global pkg_name %{name}}

Summary:       Cloud Development Controller
Name:          %{?scl_prefix}rubygem-%{gem_name}
Version: 1.5.2
Release:       1%{?dist}
BuildRequires: %{?scl_prefix}rubygem(json)
BuildRequires: %{?scl_prefix}ruby >= 1.9, %{?scl_prefix}rubygems-devel
BuildRequires: openshift-origin-common
Requires:      openshift-origin-common = 1.5.2, /usr/bin/git
Requires(post): %{?scl_prefix}rubygem-%{gem_name}
Requires:      mongodb

%description
Controller.
`

func TestParseSpec(t *testing.T) {
	t.Run("expands scl prefix", func(t *testing.T) {
		pkg, err := ParseSpec(strings.NewReader(brokerSpec), "ruby193-")
		require.NoError(t, err)

		assert.Equal(t, "ruby193-rubygem-openshift-origin-controller", pkg.Name)
		assert.Equal(t, "1.5.2", pkg.Version)
		if diff := cmp.Diff([]string{"ruby193-rubygem(json)", "ruby193-ruby", "ruby193-rubygems-devel", "openshift-origin-common"}, pkg.BuildRequires); diff != "" {
			t.Errorf("BuildRequires mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"openshift-origin-common", "ruby193-rubygem-openshift-origin-controller", "mongodb"}, pkg.Requires); diff != "" {
			t.Errorf("Requires mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty prefix", func(t *testing.T) {
		pkg, err := ParseSpec(strings.NewReader(brokerSpec), "")
		require.NoError(t, err)
		assert.Equal(t, "rubygem-openshift-origin-controller", pkg.Name)
		assert.Contains(t, pkg.BuildRequires, "ruby")
	})

	t.Run("keeps virtual provides", func(t *testing.T) {
		spec := "Name: rubygem-openshift-origin-node\n" +
			"BuildRequires: %{?scl:%scl_prefix}rubygem(rake)\n" +
			"BuildRequires: ruby(abi) = 1.9.1\n" +
			"BuildRequires: rubygems-devel\n" +
			"Requires: %{?scl:%scl_prefix}rubygem(json), %{!?scl:ruby(release)}\n"

		pkg, err := ParseSpec(strings.NewReader(spec), "")
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"rubygem(rake)", "ruby(abi)", "rubygems-devel"}, pkg.BuildRequires); diff != "" {
			t.Errorf("BuildRequires mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"rubygem(json)", "ruby(release)"}, pkg.Requires)

		pkg, err = ParseSpec(strings.NewReader(spec), "ruby193-")
		require.NoError(t, err)
		assert.Equal(t, []string{"ruby193-rubygem(rake)", "ruby(abi)", "rubygems-devel"}, pkg.BuildRequires)
		assert.Equal(t, []string{"ruby193-rubygem(json)"}, pkg.Requires)
	})

	t.Run("drops self build requirement", func(t *testing.T) {
		spec := "Name: loop\nBuildRequires: loop, other\n"
		pkg, err := ParseSpec(strings.NewReader(spec), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"other"}, pkg.BuildRequires)
		assert.NoError(t, pkg.Validate())
	})
}

func TestPackage_Validate(t *testing.T) {
	assert.ErrorContains(t, Package{Dir: "x"}.Validate(), "has no name")
	assert.ErrorContains(t, Package{Name: "a", BuildRequires: []string{"a"}}.Validate(), "lists itself")
	assert.NoError(t, Package{Name: "a", BuildRequires: []string{"b"}}.Validate())
}

func writeSpec(t *testing.T, root, dir, content string) {
	t.Helper()
	p := filepath.Join(root, dir, filepath.Base(dir)+".spec")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeSpec(t, root, "common", "Name: common\nVersion: 1.0\nBuildRequires: make\n")
	writeSpec(t, root, "broker", "Name: broker\nVersion: 2.0\nBuildRequires: common, ruby\nRequires: common, httpd\n")
	writeSpec(t, root, "kerberos", "Name: auth-kerberos\nBuildRequires: common\n")
	writeSpec(t, root, ".git/stale", "Name: stale\n")

	c, err := Load(context.Background(), Options{Ignore: []string{"auth-kerberos"}}, root, filepath.Join(root, "missing"))
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	names := []string{}
	for _, p := range c.Packages() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"broker", "common"}, names)

	broker, ok := c.Get("broker")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "broker"), broker.Dir)
	assert.Equal(t, "broker", broker.InstallName())
	assert.True(t, c.Has("common"))
	assert.False(t, c.Has("auth-kerberos"))

	assert.Equal(t, []string{"httpd", "make", "ruby"}, c.RequiredPackages())
}

func TestNew_DuplicateNames(t *testing.T) {
	_, err := New([]Package{{Name: "a", SpecFile: "x/a.spec"}, {Name: "a", SpecFile: "y/a.spec"}})
	assert.ErrorContains(t, err, `package "a" is defined more than once`)
}

func TestCatalog_Filter(t *testing.T) {
	c, err := New([]Package{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)

	kept := c.Filter(func(p Package) bool { return p.Name != "b" })
	assert.Equal(t, 2, kept.Len())
	assert.False(t, kept.Has("b"))
	assert.Equal(t, 3, c.Len(), "filtering leaves the original untouched")
}

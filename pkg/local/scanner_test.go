package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/types"
	"github.com/flanksource/jdk/pkg/version"
)

// writeJdk lays out a fake JDK below home: a bin/java launcher and a
// release file with the given content.
func writeJdk(t *testing.T, home, release string) {
	t.Helper()
	binDir := filepath.Join(home, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	java := filepath.Join(binDir, "java"+platform.CurrentOS().ExeSuffix())
	require.NoError(t, os.WriteFile(java, []byte("#!/bin/sh\n"), 0755))
	if release != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, "release"), []byte(release), 0644))
	}
}

const sampleRelease = `IMPLEMENTOR="Eclipse Adoptium"
JAVA_VERSION="21.0.2"
JAVA_VERSION_DATE="2024-01-16"
MODULES="java.base java.compiler java.sql"
OS_ARCH="x86_64"
OS_NAME="Linux"
`

func TestDetectJdkHome(t *testing.T) {
	t.Run("direct layout", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, "")

		home, ok := DetectJdkHome(root)
		require.True(t, ok)
		assert.Equal(t, root, home)
	})

	t.Run("single wrapping directory", func(t *testing.T) {
		root := t.TempDir()
		inner := filepath.Join(root, "jdk-21.0.2")
		writeJdk(t, inner, "")

		home, ok := DetectJdkHome(root)
		require.True(t, ok)
		assert.Equal(t, inner, home)
	})

	t.Run("macOS bundle under wrapping directory", func(t *testing.T) {
		root := t.TempDir()
		inner := filepath.Join(root, "zulu-21.jdk", "Contents", "Home")
		writeJdk(t, inner, "")

		home, ok := DetectJdkHome(root)
		require.True(t, ok)
		assert.Equal(t, inner, home)
	})

	t.Run("macOS bundle at root", func(t *testing.T) {
		root := t.TempDir()
		inner := filepath.Join(root, "Contents", "Home")
		writeJdk(t, inner, "")

		home, ok := DetectJdkHome(root)
		require.True(t, ok)
		assert.Equal(t, inner, home)
	})

	t.Run("not a JDK", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("hi"), 0644))

		_, ok := DetectJdkHome(root)
		assert.False(t, ok)
	})

	t.Run("two sibling directories are ambiguous", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, filepath.Join(root, "a"), "")
		writeJdk(t, filepath.Join(root, "b"), "")

		_, ok := DetectJdkHome(root)
		assert.False(t, ok)
	})
}

func TestReadInstallation(t *testing.T) {
	t.Run("parses release metadata", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, sampleRelease)

		inst, ok := ReadInstallation(root)
		require.True(t, ok)
		assert.Equal(t, root, inst.Home)
		assert.Equal(t, "21.0.2", inst.Spec.Version)
		assert.Equal(t, platform.Linux, inst.Spec.OS)
		assert.Equal(t, platform.X64, inst.Spec.Arch)
		assert.Equal(t, "eclipse", inst.Spec.Vendor)
		assert.False(t, inst.Spec.JavaFXBundled)
		assert.False(t, inst.Spec.NativeImageCapable)
	})

	t.Run("detects bundled JavaFX from the module list", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, `JAVA_VERSION="25.0.1"
OS_NAME="Darwin"
OS_ARCH="aarch64"
IMPLEMENTOR="Azul Systems, Inc."
MODULES="java.base javafx.base javafx.controls"
`)

		inst, ok := ReadInstallation(root)
		require.True(t, ok)
		assert.Equal(t, platform.MacOS, inst.Spec.OS)
		assert.Equal(t, platform.Aarch64, inst.Spec.Arch)
		assert.Equal(t, "azul", inst.Spec.Vendor)
		assert.True(t, inst.Spec.JavaFXBundled)
	})

	t.Run("detects native-image from GRAALVM_VERSION", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, `JAVA_VERSION="21.0.2"
OS_NAME="Linux"
OS_ARCH="amd64"
IMPLEMENTOR="GraalVM Community"
GRAALVM_VERSION="23.1.2"
`)

		inst, ok := ReadInstallation(root)
		require.True(t, ok)
		assert.True(t, inst.Spec.NativeImageCapable)
		assert.Equal(t, "oracle", inst.Spec.Vendor)
	})

	t.Run("missing version is a hard miss", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, `OS_NAME="Linux"
OS_ARCH="amd64"
`)

		_, ok := ReadInstallation(root)
		assert.False(t, ok)
	})

	t.Run("missing OS is a hard miss", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, `JAVA_VERSION="21.0.2"
OS_ARCH="amd64"
`)

		_, ok := ReadInstallation(root)
		assert.False(t, ok)
	})

	t.Run("missing vendor is tolerated", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, `JAVA_VERSION="21.0.2"
OS_NAME="Linux"
OS_ARCH="amd64"
`)

		inst, ok := ReadInstallation(root)
		require.True(t, ok)
		assert.Empty(t, inst.Spec.Vendor)
	})

	t.Run("no release file is a miss", func(t *testing.T) {
		root := t.TempDir()
		writeJdk(t, root, "")

		_, ok := ReadInstallation(root)
		assert.False(t, ok)
	})
}

func TestInstalledCandidates(t *testing.T) {
	javaHome := t.TempDir()
	searchPath := t.TempDir()
	cacheDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "abc123"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "def456"), 0755))

	t.Setenv(EnvJavaHome, javaHome)
	t.Setenv(EnvInstallationPaths, "")

	s := NewScanner([]string{searchPath, filepath.Join(searchPath, "does-not-exist")}, cacheDir)
	candidates := s.InstalledCandidates()

	require.Len(t, candidates, 4)
	assert.Equal(t, javaHome, candidates[0])
	assert.Equal(t, searchPath, candidates[1])
	assert.Equal(t, filepath.Join(cacheDir, "abc123"), candidates[2])
	assert.Equal(t, filepath.Join(cacheDir, "def456"), candidates[3])
}

func TestInstalledCandidatesFromEnvPaths(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	t.Setenv(EnvJavaHome, "")
	t.Setenv(EnvInstallationPaths, a+","+b+",/no/such/dir")

	s := NewScanner(nil, "")
	candidates := s.InstalledCandidates()

	require.Len(t, candidates, 2)
	assert.Equal(t, a, candidates[0])
	assert.Equal(t, b, candidates[1])
}

func TestCompatibleInstalledJdks(t *testing.T) {
	dir := t.TempDir()
	jdk21 := filepath.Join(dir, "jdk-21")
	jdk17 := filepath.Join(dir, "jdk-17")
	writeJdk(t, jdk21, sampleRelease)
	writeJdk(t, jdk17, `IMPLEMENTOR="Azul Systems, Inc."
JAVA_VERSION="17.0.9"
OS_ARCH="x86_64"
OS_NAME="Linux"
`)

	t.Setenv(EnvJavaHome, "")
	t.Setenv(EnvInstallationPaths, "")

	s := NewScanner([]string{jdk17, jdk21}, "")

	query := types.NewQuery(
		types.WithOS(platform.Linux),
		types.WithArch(platform.X64),
		types.WithVersion(version.MustParse("21")),
	)
	matches := s.CompatibleInstalledJdks(query)
	require.Len(t, matches, 1)
	assert.Equal(t, "21.0.2", matches[0].Spec.Version)

	// discovery order is preserved, first match wins downstream
	anyQuery := types.NewQuery(
		types.WithOS(platform.Linux),
		types.WithArch(platform.X64),
		types.WithVersion(version.MustParse("any")),
	)
	all := s.CompatibleInstalledJdks(anyQuery)
	require.Len(t, all, 2)
	assert.Equal(t, "17.0.9", all[0].Spec.Version)
	assert.Equal(t, "21.0.2", all[1].Spec.Version)
}

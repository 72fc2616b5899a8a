package verify

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jdk/pkg/platform"
)

// copyTestBinary places the running test executable at dest, giving the
// tests a real binary for the host platform without invoking a compiler.
func copyTestBinary(t *testing.T, dest string) {
	t.Helper()
	self, err := os.Executable()
	require.NoError(t, err)

	src, err := os.Open(self)
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0755))
	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	require.NoError(t, err)
	defer dst.Close()

	_, err = io.Copy(dst, src)
	require.NoError(t, err)
}

func TestDetectBinaryPlatform(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "probe")
	copyTestBinary(t, bin)

	info, err := DetectBinaryPlatform(bin)
	require.NoError(t, err)
	assert.Equal(t, platform.CurrentOS(), info.OS)
	assert.Equal(t, platform.CurrentArch(), info.Arch)
	assert.NotEqual(t, "unknown", info.Format)
}

func TestDetectBinaryPlatformNotABinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

	info, err := DetectBinaryPlatform(path)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Format)
}

func TestDetectBinaryPlatformMissingFile(t *testing.T) {
	_, err := DetectBinaryPlatform(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestVerifyJavaBinary(t *testing.T) {
	home := t.TempDir()
	java := filepath.Join(home, "bin", "java"+platform.CurrentOS().ExeSuffix())
	copyTestBinary(t, java)

	t.Run("matching platform", func(t *testing.T) {
		assert.NoError(t, VerifyJavaBinary(home, platform.CurrentOS(), platform.CurrentArch()))
	})

	t.Run("wrong architecture", func(t *testing.T) {
		wrong := platform.Aarch64
		if platform.CurrentArch() == platform.Aarch64 {
			wrong = platform.X64
		}
		err := VerifyJavaBinary(home, platform.CurrentOS(), wrong)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "architecture mismatch")
	})

	t.Run("missing launcher", func(t *testing.T) {
		err := VerifyJavaBinary(t.TempDir(), platform.CurrentOS(), platform.CurrentArch())
		assert.Error(t, err)
	})

	t.Run("text file posing as launcher", func(t *testing.T) {
		fake := t.TempDir()
		script := filepath.Join(fake, "bin", "java"+platform.CurrentOS().ExeSuffix())
		require.NoError(t, os.MkdirAll(filepath.Dir(script), 0755))
		require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 21\n"), 0755))

		err := VerifyJavaBinary(fake, platform.CurrentOS(), platform.CurrentArch())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a recognized executable format")
	})
}

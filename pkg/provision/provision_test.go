package provision

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/flanksource/clicky/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/jdk/pkg/checksum"
)

const testRelease = `JAVA_VERSION="21.0.2"
OS_NAME="Linux"
OS_ARCH="x86_64"
IMPLEMENTOR="Eclipse Adoptium"
`

// makeJdkZip builds an archive holding a minimal JDK tree under a
// single wrapping directory, the shape real distribution archives have.
func makeJdkZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	javaName := "java"
	if runtime.GOOS == "windows" {
		javaName = "java.exe"
	}
	for name, content := range map[string]string{
		"jdk-21.0.2/bin/" + javaName: "#!/bin/sh\n",
		"jdk-21.0.2/release":         testRelease,
	} {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
		hdr.SetMode(0755)
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// stubDownloader counts calls and writes the given archive bytes.
func stubDownloader(calls *atomic.Int32, payload []byte) DownloadFunc {
	return func(ctx context.Context, url, dest string, t *task.Task) error {
		calls.Add(1)
		return os.WriteFile(dest, payload, 0644)
	}
}

func TestProvisionDownloadsAndExtracts(t *testing.T) {
	cacheRoot := t.TempDir()
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, makeJdkZip(t))))

	home, err := p.Provision(context.Background(), "https://dl.example.com/jdk.zip", "", "jdk.zip", "zip", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	assert.True(t, strings.HasSuffix(home, "jdk-21.0.2"), "home should be the wrapping directory, got %s", home)
	assert.FileExists(t, filepath.Join(home, "release"))

	cacheKey := checksum.CalculateStringChecksum("https://dl.example.com/jdk.zip")
	assert.FileExists(t, filepath.Join(cacheRoot, extractedDir, cacheKey, markerName))
	assert.FileExists(t, filepath.Join(cacheRoot, downloadsDir, cacheKey+"-jdk.zip"))
}

func TestProvisionIsIdempotent(t *testing.T) {
	cacheRoot := t.TempDir()
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, makeJdkZip(t))))

	uri := "https://dl.example.com/jdk.zip"
	first, err := p.Provision(context.Background(), uri, "", "jdk.zip", "zip", nil)
	require.NoError(t, err)

	second, err := p.Provision(context.Background(), uri, "", "jdk.zip", "zip", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "a complete slot must not trigger a second download")
}

func TestProvisionReusesCachedArchive(t *testing.T) {
	cacheRoot := t.TempDir()
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, makeJdkZip(t))))

	uri := "https://dl.example.com/jdk.zip"
	_, err := p.Provision(context.Background(), uri, "", "jdk.zip", "zip", nil)
	require.NoError(t, err)

	// Drop the extracted slot but keep the downloaded archive.
	cacheKey := checksum.CalculateStringChecksum(uri)
	require.NoError(t, os.RemoveAll(filepath.Join(cacheRoot, extractedDir, cacheKey)))

	_, err = p.Provision(context.Background(), uri, "", "jdk.zip", "zip", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "extraction should reuse the cached archive")
}

func TestProvisionChecksumMismatch(t *testing.T) {
	cacheRoot := t.TempDir()
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, makeJdkZip(t))))

	uri := "https://dl.example.com/jdk.zip"
	_, err := p.Provision(context.Background(), uri, strings.Repeat("0", 64), "jdk.zip", "zip", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	cacheKey := checksum.CalculateStringChecksum(uri)
	assert.NoFileExists(t, filepath.Join(cacheRoot, extractedDir, cacheKey, markerName))
	assert.FileExists(t, filepath.Join(cacheRoot, downloadsDir, cacheKey+"-jdk.zip"),
		"the mismatched archive is kept for inspection")
}

func TestProvisionVerifiesMatchingChecksum(t *testing.T) {
	cacheRoot := t.TempDir()
	payload := makeJdkZip(t)
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, payload)))

	tmp := filepath.Join(t.TempDir(), "payload.zip")
	require.NoError(t, os.WriteFile(tmp, payload, 0644))
	sum, err := checksum.CalculateFileChecksum(tmp, checksum.HashTypeSHA256)
	require.NoError(t, err)

	home, err := p.Provision(context.Background(), "https://dl.example.com/jdk.zip", sum, "jdk.zip", "zip", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, home)
}

func TestProvisionRebuildsCorruptedSlot(t *testing.T) {
	cacheRoot := t.TempDir()
	var calls atomic.Int32
	p := New(cacheRoot, WithDownloader(stubDownloader(&calls, makeJdkZip(t))))

	// A slot with a marker but no JDK inside simulates a tree damaged
	// after extraction.
	uri := "https://dl.example.com/jdk.zip"
	cacheKey := checksum.CalculateStringChecksum(uri)
	slot := filepath.Join(cacheRoot, extractedDir, cacheKey)
	require.NoError(t, os.MkdirAll(slot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(slot, markerName), []byte("ok"), 0644))

	home, err := p.Provision(context.Background(), uri, "", "jdk.zip", "zip", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, strings.HasSuffix(home, "jdk-21.0.2"))
}

func TestChooseFileName(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		preferred   string
		archiveType string
		expected    string
	}{
		{name: "preferred filename wins", uri: "https://x/a.tgz", preferred: "jdk-21.tar.gz", archiveType: "zip", expected: "jdk-21.tar.gz"},
		{name: "archive type implies extension", uri: "https://x/download?id=5", preferred: "", archiveType: "tar.gz", expected: "jdk.tar.gz"},
		{name: "msi extension", uri: "https://x/download?id=5", preferred: "", archiveType: "msi", expected: "jdk.msi"},
		{name: "uri last segment", uri: "https://x/path/jdk-21.zip", preferred: "", archiveType: "", expected: "jdk-21.zip"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, chooseFileName(test.uri, test.preferred, test.archiveType))
		})
	}

	t.Run("hash fallback", func(t *testing.T) {
		name := chooseFileName("https://x/", "", "")
		assert.True(t, strings.HasPrefix(name, "download-"), "got %s", name)
	})
}

func TestResolveCacheRoot(t *testing.T) {
	t.Run("configured wins over env", func(t *testing.T) {
		t.Setenv(EnvCacheDir, "/env/cache")
		assert.Equal(t, "/configured", ResolveCacheRoot("/configured"))
	})

	t.Run("env wins over default", func(t *testing.T) {
		t.Setenv(EnvCacheDir, "/env/cache")
		assert.Equal(t, "/env/cache", ResolveCacheRoot(""))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvCacheDir, "")
		assert.Equal(t, DefaultCacheRoot(), ResolveCacheRoot(""))
	})
}

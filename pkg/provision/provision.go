// Package provision turns a remote package into a cached, extracted JDK:
// download, verify, extract to a temporary directory, and atomically
// publish into the cache slot with a completion marker.
package provision

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/checksum"
	"github.com/flanksource/jdk/pkg/download"
	"github.com/flanksource/jdk/pkg/extract"
	"github.com/flanksource/jdk/pkg/local"
	"github.com/flanksource/jdk/pkg/utils"
)

const (
	markerName    = ".complete"
	downloadsDir  = "downloads"
	extractedDir  = "extracted"
	httpTimeout   = 10 * time.Second
	retryAttempts = 3
)

// EnvCacheDir overrides the cache root directory.
const EnvCacheDir = "JDK_CACHE_DIR"

// DefaultCacheRoot returns the user-level cache directory used when no
// override is configured.
func DefaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".jdk", "cache")
	}
	return filepath.Join(home, ".jdk", "cache")
}

// ResolveCacheRoot applies the override precedence: an explicitly
// configured directory wins over the environment variable, which wins
// over the default location.
func ResolveCacheRoot(configured string) string {
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	if env := os.Getenv(EnvCacheDir); strings.TrimSpace(env) != "" {
		return env
	}
	return DefaultCacheRoot()
}

// DownloadFunc fetches a URL into a destination file.
type DownloadFunc func(ctx context.Context, url, dest string, t *task.Task) error

// Provisioner manages the on-disk JDK cache.
type Provisioner struct {
	cacheRoot string
	download  DownloadFunc
}

// Option is a functional option for configuring the provisioner
type Option func(*Provisioner)

// WithDownloader replaces the HTTP downloader, used in tests.
func WithDownloader(fn DownloadFunc) Option {
	return func(p *Provisioner) {
		if fn != nil {
			p.download = fn
		}
	}
}

// New creates a provisioner rooted at cacheRoot.
func New(cacheRoot string, opts ...Option) *Provisioner {
	p := &Provisioner{
		cacheRoot: ResolveCacheRoot(cacheRoot),
		download: func(ctx context.Context, url, dest string, t *task.Task) error {
			return download.Download(ctx, url, dest, t,
				download.WithConnectTimeout(httpTimeout),
				download.WithReadTimeout(httpTimeout),
				download.WithMaxAttempts(retryAttempts))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CacheRoot returns the cache base directory.
func (p *Provisioner) CacheRoot() string { return p.cacheRoot }

// ExtractedDir returns the directory holding extracted JDK trees. The
// local scanner also reads it so cached JDKs count as installed.
func (p *Provisioner) ExtractedDir() string {
	return filepath.Join(p.cacheRoot, extractedDir)
}

// Provision downloads, verifies and extracts the archive at downloadURI,
// returning the JDK home inside the cache slot. The slot is keyed by the
// SHA-256 of the URI string so the same artifact is addressable before it
// is ever downloaded. A slot carrying the completion marker is reused
// without touching the network.
func (p *Provisioner) Provision(ctx context.Context, downloadURI, expectedChecksum, preferredFilename, archiveType string, t *task.Task) (string, error) {
	cacheKey := checksum.CalculateStringChecksum(downloadURI)

	downloads := filepath.Join(p.cacheRoot, downloadsDir)
	slot := filepath.Join(p.cacheRoot, extractedDir, cacheKey)
	marker := filepath.Join(slot, markerName)

	if info, err := os.Stat(marker); err == nil && info.Mode().IsRegular() {
		if home, ok := local.DetectJdkHome(slot); ok {
			logger.Infof("Using cached JDK: %s", utils.LogPath(home))
			return home, nil
		}
		// Marker present but the tree is not a JDK: rebuild the slot.
		logger.Warnf("Cache slot %s is corrupted, rebuilding", utils.LogPath(slot))
	}

	if err := os.MkdirAll(downloads, 0755); err != nil {
		return "", fmt.Errorf("failed to create download cache: %w", err)
	}
	fileName := chooseFileName(downloadURI, preferredFilename, archiveType)
	archive := filepath.Join(downloads, cacheKey+"-"+fileName)

	if info, err := os.Stat(archive); err == nil && info.Mode().IsRegular() {
		logger.Infof("Archive already in cache: %s", utils.LogPath(archive))
	} else {
		logger.Infof("Downloading JDK from %s", utils.ShortenURL(downloadURI))
		if err := p.download(ctx, downloadURI, archive, t); err != nil {
			return "", err
		}
	}

	// A mismatched archive is left in place for inspection.
	if expectedChecksum != "" {
		if err := checksum.VerifyChecksum(archive, expectedChecksum); err != nil {
			return "", err
		}
	}

	// Extract to a temporary sibling so a partially extracted tree can
	// never be mistaken for a complete slot.
	tmp := slot + ".tmp"
	if err := extract.Extract(archive, tmp, t); err != nil {
		return "", err
	}

	if err := os.RemoveAll(slot); err != nil {
		return "", fmt.Errorf("failed to clear cache slot: %w", err)
	}
	if err := os.MkdirAll(slot, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache slot: %w", err)
	}
	if err := moveContent(tmp, slot); err != nil {
		return "", err
	}
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		logger.Warnf("Failed to remove temp directory %s: %v", tmp, err)
	}

	if err := os.WriteFile(marker, []byte("ok"), 0644); err != nil {
		return "", fmt.Errorf("failed to write completion marker: %w", err)
	}

	home, ok := local.DetectJdkHome(slot)
	if !ok {
		return "", fmt.Errorf("failed to detect JDK home in extracted directory: %s", slot)
	}
	return home, nil
}

// chooseFileName picks the on-disk archive name: the index-provided
// filename, else a generic name with the extension implied by the archive
// type, else the last URI path segment, else a name derived from the URI
// itself.
func chooseFileName(downloadURI, preferredFilename, archiveType string) string {
	if strings.TrimSpace(preferredFilename) != "" {
		return preferredFilename
	}
	if ext := extensionForArchiveType(archiveType); ext != "" {
		return "jdk" + ext
	}
	return fileNameFromURI(downloadURI)
}

func extensionForArchiveType(archiveType string) string {
	switch strings.ToLower(archiveType) {
	case "tar.gz", "tgz":
		return ".tar.gz"
	case "tar.xz", "txz":
		return ".tar.xz"
	case "zip":
		return ".zip"
	case "msi":
		return ".msi"
	case "exe":
		return ".exe"
	case "dmg":
		return ".dmg"
	case "pkg":
		return ".pkg"
	}
	return ""
}

func fileNameFromURI(uri string) string {
	path := uri
	if q := strings.Index(path, "?"); q >= 0 {
		path = path[:q]
	}
	if i := strings.LastIndex(path, "/"); i >= 0 && i+1 < len(path) {
		return path[i+1:]
	}
	h := fnv.New32a()
	h.Write([]byte(uri))
	return fmt.Sprintf("download-%d", h.Sum32())
}

// moveContent renames every entry of srcDir into dstDir.
func moveContent(srcDir, dstDir string) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to list temp directory: %w", err)
	}
	for _, e := range entries {
		src := filepath.Join(srcDir, e.Name())
		dst := filepath.Join(dstDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("failed to move %s into cache slot: %w", e.Name(), err)
		}
	}
	return nil
}

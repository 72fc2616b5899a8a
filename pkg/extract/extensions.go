package extract

import (
	"path/filepath"
	"strings"
)

// GetExtension returns the file extension from a URL, handling compound
// archive extensions
func GetExtension(url string) string {
	// Remove query parameters from URLs
	if idx := strings.Index(url, "?"); idx != -1 {
		url = url[:idx]
	}

	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(lower, ".tgz"):
		return ".tgz"
	case strings.HasSuffix(lower, ".tar.xz"):
		return ".tar.xz"
	case strings.HasSuffix(lower, ".txz"):
		return ".txz"
	case strings.HasSuffix(lower, ".tar"):
		return ".tar"
	case strings.HasSuffix(lower, ".zip"):
		return ".zip"
	default:
		return filepath.Ext(url)
	}
}

// IsSupportedArchive reports whether the file can be extracted by this
// package based on its extension.
func IsSupportedArchive(path string) bool {
	switch GetExtension(path) {
	case ".zip", ".tar.gz", ".tgz", ".tar.xz", ".txz", ".tar":
		return true
	}
	return false
}

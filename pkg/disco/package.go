package disco

import (
	"strings"

	"github.com/flanksource/jdk/pkg/platform"
)

// Package is one downloadable artifact selected from the index.
type Package struct {
	DownloadURL  string
	Checksum     string // hex sha256 declared by the index, may be empty
	Distribution string
	ArchiveType  string
	Filename     string
	JavaVersion  string
	OS           platform.OS
	Arch         platform.Arch
	LibCType     string
}

// packageLinks holds the download location under its historical field
// names, newest first.
type packageLinks struct {
	PkgDownloadRedirect string `json:"pkg_download_redirect"`
	PkgDownloadURI      string `json:"pkg_download_uri"`
	PkgDownloadURL      string `json:"pkg_download_url"`
	DownloadURI         string `json:"download_uri"`
	DownloadURL         string `json:"download_url"`
}

func (l *packageLinks) first() string {
	if l == nil {
		return ""
	}
	return firstNonBlank(l.PkgDownloadRedirect, l.PkgDownloadURI, l.PkgDownloadURL, l.DownloadURI, l.DownloadURL)
}

// rawPackage mirrors one entry of the index's result array. The schema
// has evolved, so the download link fields exist both nested and at the
// top level.
type rawPackage struct {
	PackageType          string `json:"package_type"`
	Distribution         string `json:"distribution"`
	JavaVersion          string `json:"java_version"`
	ArchiveType          string `json:"archive_type"`
	OperatingSystem      string `json:"operating_system"`
	Architecture         string `json:"architecture"`
	LibCType             string `json:"libc_type"`
	DirectlyDownloadable bool   `json:"directly_downloadable"`
	Filename             string `json:"filename"`
	SHA256               string `json:"sha256"`
	JavaFXBundled        bool   `json:"javafx_bundled"`

	Link  *packageLinks `json:"link"`
	Links *packageLinks `json:"links"`

	PkgDownloadRedirect string `json:"pkg_download_redirect"`
	PkgDownloadURI      string `json:"pkg_download_uri"`
	PkgDownloadURL      string `json:"pkg_download_url"`
	DownloadURI         string `json:"download_uri"`
	DownloadURL         string `json:"download_url"`
}

// downloadLink tries the nested link object first, then the legacy
// top-level fields.
func (p *rawPackage) downloadLink() string {
	if u := p.Link.first(); u != "" {
		return u
	}
	if u := p.Links.first(); u != "" {
		return u
	}
	return firstNonBlank(p.PkgDownloadRedirect, p.PkgDownloadURI, p.PkgDownloadURL, p.DownloadURI, p.DownloadURL)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func guessArchiveFromURI(uri string) string {
	if q := strings.Index(uri, "?"); q >= 0 {
		uri = uri[:q]
	}
	if slash := strings.LastIndex(uri, "/"); slash >= 0 {
		uri = uri[slash+1:]
	}
	return guessArchiveFromName(uri)
}

func guessArchiveFromName(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return "tar.gz"
	case strings.HasSuffix(lower, ".tgz"):
		return "tgz"
	case strings.HasSuffix(lower, ".tar.xz"):
		return "tar.xz"
	case strings.HasSuffix(lower, ".txz"):
		return "txz"
	case strings.HasSuffix(lower, ".zip"):
		return "zip"
	case strings.HasSuffix(lower, ".tar"):
		return "tar"
	}
	return ""
}

func normalizeArchiveType(t string) string {
	switch strings.ToLower(t) {
	case "tar.gz", "tgz", "tar.xz", "txz", "zip", "tar":
		return strings.ToLower(t)
	}
	return ""
}

// isSupportedArchiveType reports whether the extractor can handle the
// type. A bare tar is excluded from selection even though the extractor
// could unpack it; the index does not serve uncompressed tars and a bare
// "tar" declaration usually means a mislabeled entry.
func isSupportedArchiveType(t string) bool {
	switch normalizeArchiveType(t) {
	case "zip", "tar.gz", "tgz", "tar.xz", "txz":
		return true
	}
	return false
}

// archivePriority ranks archive formats for selection. Windows prefers
// zip; everything else prefers tar.gz. tar.xz ranks last everywhere.
func archivePriority(archiveType string, os platform.OS) int {
	if os.IsWindows() {
		switch archiveType {
		case "zip":
			return 4
		case "tgz":
			return 3
		case "tar.gz":
			return 2
		case "tar.xz", "txz":
			return 1
		}
		return 0
	}
	switch archiveType {
	case "tar.gz":
		return 4
	case "tgz":
		return 3
	case "zip":
		return 2
	case "tar.xz", "txz":
		return 1
	}
	return 0
}

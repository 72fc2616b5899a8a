// Package extract unpacks JDK archives (zip, tar.gz, tar.xz) into a
// target directory, preserving permissions and symlinks and rejecting
// entries that would escape the destination.
package extract

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/flanksource/clicky/task"
	"github.com/ulikunitz/xz"
)

// Extract unpacks archivePath into extractDir, choosing the format from
// the file extension. The directory is recreated from scratch so stale
// entries from a previous failed run cannot survive.
func Extract(archivePath, extractDir string, t *task.Task) error {
	if t != nil {
		t.SetDescription(fmt.Sprintf("Extracting %s", filepath.Base(archivePath)))
	}

	if _, err := os.Stat(extractDir); err == nil {
		if err := os.RemoveAll(extractDir); err != nil {
			return fmt.Errorf("failed to clean up existing extract directory: %w", err)
		}
	}
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return fmt.Errorf("failed to create extract directory: %w", err)
	}

	var count int
	var err error
	switch GetExtension(archivePath) {
	case ".zip":
		count, err = extractZip(archivePath, extractDir)
	case ".tar.gz", ".tgz":
		count, err = extractTar(archivePath, extractDir, compressionGzip)
	case ".tar.xz", ".txz":
		count, err = extractTar(archivePath, extractDir, compressionXz)
	case ".tar":
		count, err = extractTar(archivePath, extractDir, compressionNone)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
	if err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("archive %s contained no entries", filepath.Base(archivePath))
	}

	if t != nil {
		t.Debugf("Extracted %d files from %s", count, filepath.Base(archivePath))
	}
	return nil
}

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionXz
)

// safeTarget resolves an archive entry name inside dst and refuses names
// that would land outside it.
func safeTarget(dst, name string) (string, error) {
	target := filepath.Join(dst, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dst)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return target, nil
}

func extractZip(archivePath, dst string) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer reader.Close()

	var count int
	for _, f := range reader.File {
		target, err := safeTarget(dst, f.Name)
		if err != nil {
			return count, err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, fmt.Errorf("failed to create directory %s: %w", f.Name, err)
			}
		case mode&os.ModeSymlink != 0:
			link, err := readZipEntry(f)
			if err != nil {
				return count, err
			}
			if err := writeSymlink(string(link), target); err != nil {
				return count, err
			}
		default:
			rc, err := f.Open()
			if err != nil {
				return count, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
			}
			err = writeFile(target, rc, entryPerm(mode))
			rc.Close()
			if err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func extractTar(archivePath, dst string, c compression) (int, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	switch c {
	case compressionGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	case compressionXz:
		xzr, err := xz.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("failed to open xz stream: %w", err)
		}
		r = xzr
	}

	tr := tar.NewReader(r)
	var count int
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read tar entry: %w", err)
		}

		target, err := safeTarget(dst, hdr.Name)
		if err != nil {
			return count, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return count, fmt.Errorf("failed to create directory %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink:
			if err := writeSymlink(hdr.Linkname, target); err != nil {
				return count, err
			}
		case tar.TypeLink:
			src, err := safeTarget(dst, hdr.Linkname)
			if err != nil {
				return count, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return count, fmt.Errorf("failed to create parent directory for %s: %w", hdr.Name, err)
			}
			if err := os.Link(src, target); err != nil {
				return count, fmt.Errorf("failed to create hard link %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, entryPerm(hdr.FileInfo().Mode())); err != nil {
				return count, err
			}
		default:
			// Character devices, fifos and the like have no business in a
			// JDK archive.
			continue
		}
		count++
	}
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return out.Close()
}

// writeSymlink creates a symlink, falling back to copying the target on
// platforms where symlink creation fails (unprivileged Windows).
func writeSymlink(linkname, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}
	_ = os.Remove(target)
	if err := os.Symlink(linkname, target); err == nil {
		return nil
	}
	src := linkname
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(target), linkname)
	}
	info, err := os.Stat(src)
	if err != nil || info.IsDir() {
		// Dangling or directory links are skipped rather than failing the
		// whole extraction.
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to copy symlink target %s: %w", linkname, err)
	}
	defer in.Close()
	return writeFile(target, in, entryPerm(info.Mode()))
}

func entryPerm(mode os.FileMode) os.FileMode {
	if runtime.GOOS == "windows" {
		return 0644
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	return perm
}

// Package local discovers JDK installations already present on the host:
// JAVA_HOME, configured installation paths, and the provisioner's own
// extraction cache.
package local

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/types"
	"github.com/samber/lo"
)

// EnvJavaHome is the environment variable naming a single JDK home.
const EnvJavaHome = "JAVA_HOME"

// EnvInstallationPaths is the environment variable holding a
// comma-separated list of additional directories to scan.
const EnvInstallationPaths = "JDK_INSTALLATION_PATHS"

// Scanner enumerates and reads local JDK installations.
type Scanner struct {
	// SearchPaths are additional installation directories, typically from
	// configuration. Entries that do not exist are silently skipped.
	SearchPaths []string

	// CacheExtractedDir is the provisioner's extraction directory; each of
	// its subdirectories is a candidate installation.
	CacheExtractedDir string
}

// NewScanner builds a scanner over the given configured search paths and
// the provisioner cache directory. Either argument may be empty.
func NewScanner(searchPaths []string, cacheExtractedDir string) *Scanner {
	return &Scanner{SearchPaths: searchPaths, CacheExtractedDir: cacheExtractedDir}
}

// InstalledCandidates gathers candidate JDK root directories in discovery
// order: JAVA_HOME, configured search paths, the JDK_INSTALLATION_PATHS
// environment variable, then the extraction cache. Non-existent or
// non-directory entries are skipped without error.
func (s *Scanner) InstalledCandidates() []string {
	var candidates []string

	if home := os.Getenv(EnvJavaHome); strings.TrimSpace(home) != "" {
		if p, ok := existingDir(home); ok {
			logger.Debugf("jdk scanner: candidate from %s: %s", EnvJavaHome, p)
			candidates = append(candidates, p)
		}
	}

	paths := s.SearchPaths
	if env := os.Getenv(EnvInstallationPaths); strings.TrimSpace(env) != "" {
		paths = append(append([]string{}, paths...), strings.Split(env, ",")...)
	}
	for _, raw := range paths {
		if p, ok := existingDir(raw); ok {
			logger.Debugf("jdk scanner: candidate installation: %s", p)
			candidates = append(candidates, p)
		}
	}

	if s.CacheExtractedDir != "" {
		entries, err := os.ReadDir(s.CacheExtractedDir)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warnf("jdk scanner: failed to scan cache directory %s: %v", s.CacheExtractedDir, err)
			}
		} else {
			for _, e := range entries {
				if e.IsDir() {
					p := filepath.Join(s.CacheExtractedDir, e.Name())
					logger.Debugf("jdk scanner: candidate from cache: %s", p)
					candidates = append(candidates, p)
				}
			}
		}
	}

	return candidates
}

// ReadInstallation parses the installation rooted at path: it detects the
// JDK home layout and reads the release metadata file. A false result
// means "not a recognizable JDK", which is normal for unrelated
// directories and never an error.
func ReadInstallation(path string) (types.JdkInstallation, bool) {
	home, ok := DetectJdkHome(path)
	if !ok {
		logger.Debugf("jdk scanner: could not determine JDK home: %s", path)
		return types.JdkInstallation{}, false
	}

	release := filepath.Join(home, "release")
	if info, err := os.Stat(release); err != nil || !info.Mode().IsRegular() {
		logger.Debugf("jdk scanner: JDK at %s has no release file", path)
		return types.JdkInstallation{}, false
	}

	spec, ok := parseReleaseFile(release, home)
	if !ok {
		return types.JdkInstallation{}, false
	}

	inst := types.JdkInstallation{Home: home, Spec: spec}
	logger.Debugf("jdk scanner: found installation %s at %s", spec, home)
	return inst, true
}

// InstalledJdks reads every candidate, dropping those that are not
// parseable JDKs.
func (s *Scanner) InstalledJdks() []types.JdkInstallation {
	return lo.FilterMap(s.InstalledCandidates(), func(path string, _ int) (types.JdkInstallation, bool) {
		return ReadInstallation(path)
	})
}

// CompatibleInstalledJdks filters discovered installations by the query's
// compatibility predicate, preserving discovery order. Callers take the
// first match; no ranking happens here.
func (s *Scanner) CompatibleInstalledJdks(query types.JdkQuery) []types.JdkInstallation {
	logger.Debugf("jdk scanner: looking for JDKs compatible with %s", query)
	return lo.Filter(s.InstalledJdks(), func(inst types.JdkInstallation, _ int) bool {
		return types.IsCompatible(inst.Spec, query)
	})
}

func existingDir(raw string) (string, bool) {
	p, err := filepath.Abs(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return p, true
}

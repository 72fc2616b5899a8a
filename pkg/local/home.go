package local

import (
	"os"
	"path/filepath"

	"github.com/flanksource/jdk/pkg/platform"
)

// layoutProbe inspects a candidate root and returns the JDK home it
// describes, if the layout matches. Probes are tried in order; the first
// success wins.
type layoutProbe func(root string) (string, bool)

var layoutProbes = []layoutProbe{
	probeDirect,
	probeSingleSubdir,
	probeMacBundleDirect,
}

// DetectJdkHome locates the JDK home (the directory containing bin/java)
// inside root. It understands the common archive layouts: the home
// directly at root, a single wrapping directory, and macOS bundle layouts
// with Contents/Home either under a wrapping directory or at root.
// Returns false when no layout matches; that is a normal "not a JDK"
// outcome, not an error.
func DetectJdkHome(root string) (string, bool) {
	for _, probe := range layoutProbes {
		if home, ok := probe(root); ok {
			return home, true
		}
	}
	return "", false
}

func probeDirect(root string) (string, bool) {
	if hasJavaExecutable(root) {
		return root, true
	}
	return "", false
}

func probeSingleSubdir(root string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	if len(dirs) != 1 {
		return "", false
	}
	if hasJavaExecutable(dirs[0]) {
		return dirs[0], true
	}
	// macOS bundle inside the wrapping directory
	macHome := filepath.Join(dirs[0], "Contents", "Home")
	if hasJavaExecutable(macHome) {
		return macHome, true
	}
	return "", false
}

func probeMacBundleDirect(root string) (string, bool) {
	macHome := filepath.Join(root, "Contents", "Home")
	if hasJavaExecutable(macHome) {
		return macHome, true
	}
	return "", false
}

// hasJavaExecutable reports whether home/bin contains the java launcher
// for the host platform.
func hasJavaExecutable(home string) bool {
	java := filepath.Join(home, "bin", "java"+platform.CurrentOS().ExeSuffix())
	info, err := os.Stat(java)
	return err == nil && info.Mode().IsRegular()
}

package local

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/types"
)

// javafxCoreModule is the module whose presence in a release file's MODULES
// list marks a JavaFX-bundled distribution.
const javafxCoreModule = "javafx.base"

// parseReleaseFile reads the line-oriented KEY="value" release metadata
// file at path and builds a JdkSpec for the installation at jdkHome.
// Missing version, OS or architecture is a hard miss (false); a missing
// vendor is tolerated.
func parseReleaseFile(path, jdkHome string) (types.JdkSpec, bool) {
	f, err := os.Open(path)
	if err != nil {
		logger.Debugf("jdk scanner: failed to read release file %s: %v", path, err)
		return types.JdkSpec{}, false
	}
	defer f.Close()

	var (
		spec      types.JdkSpec
		osSet     bool
		archSet   bool
		graalSeen bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := splitReleaseLine(scanner.Text())
		if !ok {
			continue
		}
		switch key {
		case "JAVA_VERSION":
			spec.Version = value
		case "OS_NAME":
			if osFamily, err := platform.ParseOS(value); err == nil {
				spec.OS = osFamily
				osSet = true
			} else {
				logger.Debugf("jdk scanner: %s: %v", path, err)
			}
		case "OS_ARCH":
			if arch, err := platform.ParseArch(value); err == nil {
				spec.Arch = arch
				archSet = true
			} else {
				logger.Debugf("jdk scanner: %s: %v", path, err)
			}
		case "IMPLEMENTOR":
			spec.Vendor = types.CanonicalVendor(value)
		case "MODULES":
			spec.JavaFXBundled = hasModule(value, javafxCoreModule)
		case "GRAALVM_VERSION":
			// GraalVM distributions generally ship native-image.
			graalSeen = true
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debugf("jdk scanner: failed to read release file %s: %v", path, err)
		return types.JdkSpec{}, false
	}

	switch {
	case spec.Version == "":
		logger.Debugf("jdk scanner: no JAVA_VERSION in release file: %s", path)
		return types.JdkSpec{}, false
	case !osSet:
		logger.Debugf("jdk scanner: no usable OS_NAME in release file: %s", path)
		return types.JdkSpec{}, false
	case !archSet:
		logger.Debugf("jdk scanner: no usable OS_ARCH in release file: %s", path)
		return types.JdkSpec{}, false
	}
	if spec.Vendor == "" {
		logger.Debugf("jdk scanner: no vendor in release file: %s", path)
	}

	spec.NativeImageCapable = graalSeen || hasNativeImageTool(jdkHome)
	return spec, true
}

// splitReleaseLine splits a release-file line into key and unquoted value.
func splitReleaseLine(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if q1 := strings.IndexByte(value, '"'); q1 >= 0 {
		if q2 := strings.LastIndexByte(value, '"'); q2 > q1 {
			value = value[q1+1 : q2]
		}
	}
	return key, value, key != ""
}

func hasModule(moduleList, module string) bool {
	for _, m := range strings.Fields(moduleList) {
		if m == module {
			return true
		}
	}
	return false
}

// hasNativeImageTool is the fallback native-image probe used when the
// release file carries no GRAALVM_VERSION marker.
func hasNativeImageTool(jdkHome string) bool {
	for _, name := range []string{"native-image", "native-image.cmd", "native-image.exe"} {
		if isExecutable(filepath.Join(jdkHome, "bin", name)) {
			return true
		}
	}
	return false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if platform.CurrentOS().IsWindows() {
		return true
	}
	return info.Mode()&0o111 != 0
}

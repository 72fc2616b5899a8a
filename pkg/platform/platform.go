package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// OS is the closed set of operating system families a JDK distribution can
// target. The zero value ("") means "unspecified".
type OS string

const (
	AIX     OS = "aix"
	FreeBSD OS = "free_bsd"
	Linux   OS = "linux"
	MacOS   OS = "macos"
	QNX     OS = "qnx"
	Solaris OS = "solaris"
	Windows OS = "windows"
)

// Arch is the closed set of CPU architectures. The zero value means
// "unspecified".
type Arch string

const (
	Aarch32 Arch = "aarch32"
	Aarch64 Arch = "aarch64"
	X64     Arch = "x64"
	X86_32  Arch = "x86_32"
)

// archAliases lists, per architecture, the spellings encountered in release
// files, in GOARCH, and in the remote index. Order matters: the first alias
// is the preferred spelling when talking to the index.
var archAliases = []struct {
	arch    Arch
	aliases []string
}{
	{Aarch32, []string{"arm", "arm32", "aarch32", "armv6l", "armv6", "armv7", "armv7l", "armv8l", "armhf"}},
	{Aarch64, []string{"aarch64", "arm64"}},
	{X64, []string{"x86_64", "amd64", "x64"}},
	{X86_32, []string{"x86", "i386", "i486", "i586", "i686", "x86-32", "386"}},
}

// Global overrides for platform detection, set from CLI flags.
var (
	globalOSOverride   OS
	globalArchOverride Arch
	globalMutex        sync.RWMutex
)

// SetGlobalOverrides sets global OS and architecture overrides from CLI flags.
// Empty values leave the runtime-detected platform in effect.
func SetGlobalOverrides(osOverride, archOverride string) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalOSOverride, globalArchOverride = "", ""
	if o, err := ParseOS(osOverride); err == nil {
		globalOSOverride = o
	}
	if a, err := ParseArch(archOverride); err == nil {
		globalArchOverride = a
	}
}

// CurrentOS returns the OS family of the running host, respecting global
// overrides.
func CurrentOS() OS {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	if globalOSOverride != "" {
		return globalOSOverride
	}
	o, err := ParseOS(runtime.GOOS)
	if err != nil {
		// Go only runs where GOOS is one of the known values.
		return Linux
	}
	return o
}

// CurrentArch returns the architecture of the running host, respecting
// global overrides.
func CurrentArch() Arch {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	if globalArchOverride != "" {
		return globalArchOverride
	}
	a, err := ParseArch(runtime.GOARCH)
	if err != nil {
		return X64
	}
	return a
}

// ParseOS normalizes an operating system name, as found in release files
// ("Darwin", "Linux", "Windows Server 2022") or GOOS, to an OS family.
func ParseOS(name string) (OS, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	switch {
	case s == "":
		return "", fmt.Errorf("empty operating system name")
	case strings.Contains(s, "mac") || strings.Contains(s, "darwin"):
		return MacOS, nil
	case strings.Contains(s, "win"):
		return Windows, nil
	case strings.Contains(s, "aix"):
		return AIX, nil
	case strings.Contains(s, "nix") || strings.Contains(s, "nux") || strings.Contains(s, "alpine"):
		return Linux, nil
	case strings.Contains(s, "sunos") || strings.Contains(s, "solaris"):
		return Solaris, nil
	case strings.Contains(s, "freebsd"):
		return FreeBSD, nil
	case strings.Contains(s, "qnx"):
		return QNX, nil
	}
	return "", fmt.Errorf("unknown operating system: %s", name)
}

// ParseArch normalizes an architecture name via the alias tables.
func ParseArch(name string) (Arch, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return "", fmt.Errorf("empty architecture name")
	}
	for _, e := range archAliases {
		for _, alias := range e.aliases {
			if s == alias {
				return e.arch, nil
			}
		}
	}
	return "", fmt.Errorf("unknown architecture: %s", name)
}

// Aliases returns the known spellings for an architecture. The remote index
// may use any of them, so queries expand the architecture to all aliases.
func (a Arch) Aliases() []string {
	for _, e := range archAliases {
		if e.arch == a {
			return e.aliases
		}
	}
	return []string{string(a)}
}

// IsWindows reports whether the OS family is Windows.
func (o OS) IsWindows() bool { return o == Windows }

// ExeSuffix returns the executable filename suffix for the OS family.
func (o OS) ExeSuffix() string {
	if o.IsWindows() {
		return ".exe"
	}
	return ""
}

// Libc flavors used by Linux JDK builds.
const (
	LibcGlibc = "glibc"
	LibcMusl  = "musl"
)

// DetectLibc returns the libc flavor for the given OS family. Only Linux
// has a libc dimension; for every other OS the result is empty. Musl is
// assumed when the host looks like Alpine.
func DetectLibc(o OS) string {
	if o != Linux {
		return ""
	}
	if _, err := os.Stat("/etc/alpine-release"); err == nil {
		return LibcMusl
	}
	if data, err := os.ReadFile("/etc/os-release"); err == nil {
		if strings.Contains(strings.ToLower(string(data)), "id=alpine") {
			return LibcMusl
		}
	}
	return LibcGlibc
}

// Package types defines the value types flowing through JDK resolution:
// the query describing what is wanted, the spec describing what an
// installation actually is, and the compatibility predicate between them.
package types

import (
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/version"
)

// JdkSpec holds the observed properties of one JDK installation, parsed
// from its release metadata file.
type JdkSpec struct {
	OS                 platform.OS
	Arch               platform.Arch
	Version            string
	Vendor             string
	NativeImageCapable bool
	JavaFXBundled      bool
}

// String renders the spec as a dash-joined token list usable as a filename.
func (s JdkSpec) String() string {
	parts := []string{}
	if s.Vendor != "" {
		parts = append(parts, s.Vendor)
	}
	parts = append(parts, s.Version, string(s.OS), string(s.Arch))
	if s.NativeImageCapable {
		parts = append(parts, "native_image")
	}
	if s.JavaFXBundled {
		parts = append(parts, "javafx")
	}
	return strings.Join(parts, "-")
}

// JdkInstallation pairs a JDK home directory (the directory containing
// bin/java) with its parsed spec. It records a fact about the filesystem at
// scan time and is never mutated.
type JdkInstallation struct {
	Home string
	Spec JdkSpec
}

// JdkQuery is the canonical, fully-defaulted set of constraints for one
// resolution attempt. Construct it with NewQuery so unset fields pick up
// host-platform defaults.
type JdkQuery struct {
	OS                 platform.OS
	Arch               platform.Arch
	Version            version.Spec
	Vendor             string // canonical vendor name or substring, "" = any
	NativeImageCapable bool
	JavaFXBundled      bool
	StableOnly         bool
	LTSOnly            bool
	ProductionUseOnly  bool
	Libc               string // set on Linux only
}

// QueryOption mutates a query under construction.
type QueryOption func(*JdkQuery)

// WithOS sets the target OS family.
func WithOS(os platform.OS) QueryOption { return func(q *JdkQuery) { q.OS = os } }

// WithArch sets the target architecture.
func WithArch(arch platform.Arch) QueryOption { return func(q *JdkQuery) { q.Arch = arch } }

// WithVersion sets the version constraint.
func WithVersion(spec version.Spec) QueryOption { return func(q *JdkQuery) { q.Version = spec } }

// WithVendor sets the vendor matcher.
func WithVendor(vendor string) QueryOption {
	return func(q *JdkQuery) { q.Vendor = strings.ToLower(strings.TrimSpace(vendor)) }
}

// WithNativeImage requires a native-image capable distribution.
func WithNativeImage(required bool) QueryOption {
	return func(q *JdkQuery) { q.NativeImageCapable = required }
}

// WithJavaFX requires a distribution with JavaFX bundled.
func WithJavaFX(required bool) QueryOption {
	return func(q *JdkQuery) { q.JavaFXBundled = required }
}

// WithLTSOnly restricts resolution to long-term-support releases.
func WithLTSOnly(only bool) QueryOption { return func(q *JdkQuery) { q.LTSOnly = only } }

// WithStableOnly restricts resolution to GA releases.
func WithStableOnly(only bool) QueryOption { return func(q *JdkQuery) { q.StableOnly = only } }

// WithProductionUseOnly restricts resolution to distributions free for
// production use.
func WithProductionUseOnly(only bool) QueryOption {
	return func(q *JdkQuery) { q.ProductionUseOnly = only }
}

// WithLibc overrides the detected libc flavor.
func WithLibc(libc string) QueryOption { return func(q *JdkQuery) { q.Libc = libc } }

// NewQuery builds a query with host-platform defaults: current OS and
// architecture, "latest" version, any vendor, stable and
// production-licensed releases only, detected libc flavor on Linux.
func NewQuery(opts ...QueryOption) JdkQuery {
	q := JdkQuery{
		Version:           version.Latest(),
		StableOnly:        true,
		ProductionUseOnly: true,
	}
	for _, opt := range opts {
		opt(&q)
	}
	if q.OS == "" {
		q.OS = platform.CurrentOS()
	}
	if q.Arch == "" {
		q.Arch = platform.CurrentArch()
	}
	if q.Libc == "" {
		q.Libc = platform.DetectLibc(q.OS)
	}
	return q
}

// String renders the query for log and error messages.
func (q JdkQuery) String() string {
	parts := []string{string(q.OS), string(q.Arch), "version=" + q.Version.String()}
	if q.Vendor != "" {
		parts = append(parts, "vendor="+q.Vendor)
	}
	if q.NativeImageCapable {
		parts = append(parts, "native_image")
	}
	if q.JavaFXBundled {
		parts = append(parts, "javafx")
	}
	if q.Libc != "" {
		parts = append(parts, "libc="+q.Libc)
	}
	return strings.Join(parts, " ")
}

// IsCompatible reports whether an installation's spec satisfies every
// dimension of the query. An unset query dimension always matches.
func IsCompatible(spec JdkSpec, query JdkQuery) bool {
	return Mismatch(spec, query) == ""
}

// Mismatch returns the name of the first query dimension the spec fails to
// satisfy, or "" when the spec is compatible. The dimension name is used in
// user-facing failure messages so misconfiguration can be corrected without
// reading debug logs.
func Mismatch(spec JdkSpec, query JdkQuery) string {
	switch {
	case query.OS != "" && spec.OS != query.OS:
		return logMismatch("operating system", string(spec.OS), string(query.OS))
	case query.Arch != "" && spec.Arch != query.Arch:
		return logMismatch("architecture", string(spec.Arch), string(query.Arch))
	case query.NativeImageCapable && !spec.NativeImageCapable:
		return logMismatch("native-image capability", "absent", "required")
	case query.JavaFXBundled && !spec.JavaFXBundled:
		return logMismatch("javafx", "not bundled", "required")
	case !query.Version.MatchesString(spec.Version):
		return logMismatch("version", spec.Version, query.Version.String())
	case !MatchVendor(query.Vendor, spec.Vendor):
		return logMismatch("vendor", spec.Vendor, query.Vendor)
	}
	return ""
}

func logMismatch(dimension, actual, requested string) string {
	logger.Debugf("incompatible %s: actual=%s, requested=%s", dimension, actual, requested)
	return dimension
}

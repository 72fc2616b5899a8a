package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var leadingDigits = regexp.MustCompile(`^\d+`)

// Version is a concrete major.minor.patch version as reported by a JDK's
// release metadata. Missing components read as zero.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a JAVA_VERSION-style string ("21", "21.0.1",
// "17.0.9+9", "25-ea", "1.8.0_392") into a concrete version. Build
// metadata after "+" is discarded and each component is read as its
// leading digit run, matching the variety of formats vendors put into
// release files.
func ParseVersion(text string) (Version, error) {
	s := strings.TrimSpace(text)
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return Version{}, fmt.Errorf("empty version string")
	}

	var parts [3]int
	for i, f := range strings.SplitN(s, ".", 3) {
		if i >= 3 {
			break
		}
		f = leadingDigits.FindString(f)
		if f == "" {
			if i == 0 {
				return Version{}, fmt.Errorf("invalid version string %q", text)
			}
			break
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version string %q: %w", text, err)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders two versions numerically: -1 if v < o, 0 if equal, 1 if
// v > o.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// CompareStrings orders two version strings using semver semantics where
// possible, falling back to the lenient component parser. Used to rank
// remote candidates newest-first.
func CompareStrings(a, b string) int {
	sa, errA := semver.NewVersion(strings.TrimSpace(a))
	sb, errB := semver.NewVersion(strings.TrimSpace(b))
	if errA == nil && errB == nil {
		return sa.Compare(sb)
	}
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

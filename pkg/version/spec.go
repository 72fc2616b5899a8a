// Package version implements the version constraint grammar used to select
// JDK releases: "any", "latest", "latest_lts", "21", "21+", "21.2", "21.2+"
// and "21.0.1". Constraints are matched component-wise against concrete
// major.minor.patch versions.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates symbolic specs from numeric ones.
type Kind int

const (
	// KindNumeric is a constraint built from version components.
	KindNumeric Kind = iota
	// KindAny matches every version.
	KindAny
	// KindLatest matches every version; the remote index resolves it to
	// the newest available release.
	KindLatest
	// KindLatestLTS matches every version; the remote index resolves it
	// to the newest long-term-support release.
	KindLatestLTS
)

// absent marks a version component that was not specified.
const absent = -1

// Spec is an immutable version constraint. Components are significant left
// to right: a set component requires equality, an open component ("+"
// suffix) requires the actual component to be at or above it and leaves
// later components unconstrained, and an absent component ends the
// comparison.
type Spec struct {
	kind  Kind
	parts [3]int // major, minor, patch; absent = -1
	open  bool   // the last set component is open-ended
}

// Any returns the spec matching every version.
func Any() Spec { return Spec{kind: KindAny} }

// Latest returns the spec that defers to the index's newest release.
func Latest() Spec { return Spec{kind: KindLatest} }

// LatestLTS returns the spec that defers to the index's newest LTS release.
func LatestLTS() Spec { return Spec{kind: KindLatestLTS} }

// Parse parses a textual version constraint. Parsing is case-insensitive
// and ignores surrounding whitespace. It fails on blank input, non-numeric
// or negative components, dangling separators ("21.", ".2", "21..") and a
// "+" suffix on a full three-component version.
func Parse(text string) (Spec, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	switch s {
	case "":
		return Spec{}, fmt.Errorf("version spec must not be blank")
	case "any":
		return Any(), nil
	case "latest":
		return Latest(), nil
	case "latest_lts":
		return LatestLTS(), nil
	}

	open := false
	if strings.HasSuffix(s, "+") {
		open = true
		s = s[:len(s)-1]
	}

	fields := strings.Split(s, ".")
	if len(fields) > 3 {
		return Spec{}, fmt.Errorf("invalid version spec %q: too many components", text)
	}
	if open && len(fields) == 3 {
		return Spec{}, fmt.Errorf("invalid version spec %q: %q not allowed on a full version", text, "+")
	}

	spec := Spec{parts: [3]int{absent, absent, absent}, open: open}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || f == "" || n < 0 {
			return Spec{}, fmt.Errorf("invalid version spec %q: component %q is not a non-negative integer", text, f)
		}
		spec.parts[i] = n
	}
	return spec, nil
}

// MustParse parses a constraint known to be valid; it panics otherwise.
// Intended for constants and tests.
func MustParse(text string) Spec {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// String renders the canonical textual form. Parse(s.String()) always
// yields a spec equal to s.
func (s Spec) String() string {
	switch s.kind {
	case KindAny:
		return "any"
	case KindLatest:
		return "latest"
	case KindLatestLTS:
		return "latest_lts"
	}
	var b strings.Builder
	for i, p := range s.parts {
		if p == absent {
			break
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(p))
	}
	if s.open {
		b.WriteByte('+')
	}
	return b.String()
}

// Kind returns the spec's discriminator.
func (s Spec) Kind() Kind { return s.kind }

// IsSymbolic reports whether the spec is "any", "latest" or "latest_lts"
// rather than a numeric constraint.
func (s Spec) IsSymbolic() bool { return s.kind != KindNumeric }

// Major returns the major component and whether it is set.
func (s Spec) Major() (int, bool) { return s.parts[0], s.kind == KindNumeric && s.parts[0] != absent }

// Minor returns the minor component and whether it is set.
func (s Spec) Minor() (int, bool) { return s.parts[1], s.kind == KindNumeric && s.parts[1] != absent }

// Patch returns the patch component and whether it is set.
func (s Spec) Patch() (int, bool) { return s.parts[2], s.kind == KindNumeric && s.parts[2] != absent }

// Open reports whether the last set component is open-ended ("+").
func (s Spec) Open() bool { return s.open }

// Matches reports whether a concrete version satisfies the constraint.
func (s Spec) Matches(v Version) bool {
	if s.IsSymbolic() {
		return true
	}
	actual := [3]int{v.Major, v.Minor, v.Patch}
	for i, want := range s.parts {
		if want == absent {
			return true
		}
		last := i == 2 || s.parts[i+1] == absent
		if s.open && last {
			return actual[i] >= want
		}
		if actual[i] != want {
			return false
		}
	}
	return true
}

// MatchesString parses a concrete version string and matches it. Unparseable
// versions never match a numeric constraint.
func (s Spec) MatchesString(v string) bool {
	if s.IsSymbolic() {
		return true
	}
	parsed, err := ParseVersion(v)
	if err != nil {
		return false
	}
	return s.Matches(parsed)
}

package types

import "strings"

// vendorAlias maps one canonical vendor name to the strings that identify
// it: substrings of release-file IMPLEMENTOR values and the remote index's
// distribution ids. Entries are ordered association lists tested in order,
// so matching stays deterministic.
type vendorAlias struct {
	vendor        string
	implementors  []string // substrings of IMPLEMENTOR values, lowercase
	distributions []string // remote distribution ids, one vendor may own several
}

var vendorAliases = []vendorAlias{
	{"adoptopenjdk", []string{"adoptopenjdk"}, []string{"aoj"}},
	{"alibaba", []string{"alibaba", "dragonwell"}, []string{"dragonwell"}},
	{"amazon", []string{"amazon", "corretto"}, []string{"corretto"}},
	{"azul", []string{"azul", "zulu"}, []string{"zulu"}},
	{"bellsoft", []string{"bellsoft", "liberica"}, []string{"liberica"}},
	{"community", []string{"ojdkbuild", "trava"}, []string{"ojdk_build", "trava"}},
	{"eclipse", []string{"eclipse", "adoptium", "temurin"}, []string{"temurin"}},
	{"gluon", []string{"gluon"}, []string{"gluon"}},
	{"huawei", []string{"huawei", "bisheng"}, []string{"bisheng"}},
	{"ibm", []string{"ibm", "semeru", "international business machines"}, []string{"semeru"}},
	{"jetbrains", []string{"jetbrains"}, []string{"jetbrains", "jbr"}},
	{"microsoft", []string{"microsoft"}, []string{"microsoft"}},
	{"openlogic", []string{"openlogic"}, []string{"open_logic"}},
	{"oracle", []string{"oracle", "graalvm"}, []string{"oracle", "graalvm"}},
	{"redhat", []string{"red hat", "redhat", "mandrel"}, []string{"mandrel", "redhat"}},
	{"sap", []string{"sap"}, []string{"sap_machine"}},
	{"tencent", []string{"tencent", "kona"}, []string{"kona"}},
}

// CanonicalVendor maps a release-file IMPLEMENTOR value to a canonical
// vendor name. Unknown implementors pass through lowercased so vendor
// matching can still work by substring.
func CanonicalVendor(implementor string) string {
	s := strings.ToLower(strings.TrimSpace(implementor))
	for _, a := range vendorAliases {
		for _, impl := range a.implementors {
			if strings.Contains(s, impl) {
				return a.vendor
			}
		}
	}
	return s
}

// VendorForDistribution maps a remote distribution id to its canonical
// vendor name, falling back to substring matches ("graalvm_community"
// still maps to oracle) and then to "unknown".
func VendorForDistribution(distribution string) string {
	d := strings.ToLower(strings.TrimSpace(distribution))
	for _, a := range vendorAliases {
		for _, id := range a.distributions {
			if d == id {
				return a.vendor
			}
		}
	}
	for _, a := range vendorAliases {
		for _, id := range a.distributions {
			if strings.Contains(d, id) {
				return a.vendor
			}
		}
	}
	return "unknown"
}

// DistributionsForVendor returns the remote distribution ids owned by a
// canonical vendor name, or nil when the vendor is unknown. A single
// vendor may map to several distributions (redhat covers both mandrel and
// redhat).
func DistributionsForVendor(vendor string) []string {
	v := strings.ToLower(strings.TrimSpace(vendor))
	for _, a := range vendorAliases {
		if a.vendor == v {
			return a.distributions
		}
	}
	return nil
}

// MatchVendor reports whether an installation's vendor string satisfies a
// vendor constraint. Matching is case-insensitive and accepts aliases and
// substrings in both directions, so a query for "temurin" matches an
// installation reporting "Eclipse Adoptium". An empty constraint matches
// everything.
func MatchVendor(requested, actual string) bool {
	req := strings.ToLower(strings.TrimSpace(requested))
	if req == "" {
		return true
	}
	act := strings.ToLower(strings.TrimSpace(actual))
	if act == "" {
		return false
	}
	if strings.Contains(act, req) || strings.Contains(req, act) {
		return true
	}
	return CanonicalVendor(act) == CanonicalVendor(req)
}

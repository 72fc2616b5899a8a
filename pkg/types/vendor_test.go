package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalVendor(t *testing.T) {
	tests := []struct {
		implementor string
		expected    string
	}{
		{"Eclipse Adoptium", "eclipse"},
		{"Azul Systems, Inc.", "azul"},
		{"Amazon.com Inc.", "amazon"},
		{"BellSoft", "bellsoft"},
		{"Oracle Corporation", "oracle"},
		{"GraalVM Community", "oracle"},
		{"Red Hat, Inc.", "redhat"},
		{"SAP SE", "sap"},
		{"International Business Machines Corporation", "ibm"},
		{"JetBrains s.r.o.", "jetbrains"},
		{"Microsoft", "microsoft"},
		{"Tencent Kona", "tencent"},
		{"Some Unknown Build", "some unknown build"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalVendor(tt.implementor), "CanonicalVendor(%q)", tt.implementor)
	}
}

func TestVendorForDistribution(t *testing.T) {
	tests := []struct {
		distribution string
		expected     string
	}{
		{"temurin", "eclipse"},
		{"zulu", "azul"},
		{"corretto", "amazon"},
		{"liberica", "bellsoft"},
		{"graalvm", "oracle"},
		{"graalvm_community", "oracle"},
		{"mandrel", "redhat"},
		{"redhat", "redhat"},
		{"sap_machine", "sap"},
		{"aoj", "adoptopenjdk"},
		{"jbr", "jetbrains"},
		{"no_such_distribution", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, VendorForDistribution(tt.distribution), "VendorForDistribution(%q)", tt.distribution)
	}
}

func TestDistributionsForVendor(t *testing.T) {
	assert.Equal(t, []string{"mandrel", "redhat"}, DistributionsForVendor("redhat"))
	assert.Equal(t, []string{"temurin"}, DistributionsForVendor("Eclipse"))
	assert.Nil(t, DistributionsForVendor("nobody"))
	assert.Nil(t, DistributionsForVendor(""))
}

func TestMatchVendor(t *testing.T) {
	tests := []struct {
		requested string
		actual    string
		matches   bool
	}{
		{"", "eclipse", true},
		{"", "", true},
		{"eclipse", "", false},
		{"eclipse", "eclipse", true},
		{"Eclipse", "ECLIPSE", true},
		{"temurin", "Eclipse Adoptium", true},
		{"eclipse", "Eclipse Adoptium", true},
		{"azul", "Azul Systems, Inc.", true},
		{"zulu", "azul", true},
		{"oracle", "GraalVM Community", true},
		{"eclipse", "Azul Systems, Inc.", false},
		{"amazon", "BellSoft", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.matches, MatchVendor(tt.requested, tt.actual),
			"MatchVendor(%q, %q)", tt.requested, tt.actual)
	}
}

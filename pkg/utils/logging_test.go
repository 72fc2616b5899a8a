package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
		{199229440, "190.0 MB"},
	}
	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, FormatBytes(test.bytes))
		})
	}
}

func TestShortenURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "strips https",
			url:      "https://api.foojay.io/disco/v3.0/packages",
			expected: "api.foojay.io/disco/v3.0/packages",
		},
		{
			name:     "strips http",
			url:      "http://example.com/a",
			expected: "example.com/a",
		},
		{
			name: "truncates long urls to domain and filename",
			url: "https://github.com/adoptium/temurin21-binaries/releases/download/jdk-21.0.2%2B13/" +
				"OpenJDK21U-jdk_x64_linux_hotspot_21.0.2_13.tar.gz",
			expected: "github.com/.../OpenJDK21U-jdk_x64_linux_hotspot_21.0.2_13.tar.gz",
		},
		{
			name:     "empty",
			url:      "",
			expected: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, ShortenURL(test.url))
		})
	}
}

func TestLogPath(t *testing.T) {
	assert.Equal(t, "", LogPath(""))
	// A path under the working directory renders relative.
	assert.False(t, strings.HasPrefix(LogPath("subdir/file.txt"), "/"))
}

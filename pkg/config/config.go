// Package config loads the jdk.yaml configuration file and resolves the
// effective settings from config, environment and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/jdk/pkg/disco"
	"github.com/flanksource/jdk/pkg/provision"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the project-level configuration file name.
	ConfigFile = "jdk.yaml"

	// UserConfigFile is the user-level fallback in the home directory.
	UserConfigFile = ".jdk.yaml"

	// EnvDiscoBaseURL overrides the package index endpoint.
	EnvDiscoBaseURL = "JDK_DISCO_BASE_URL"
)

// QueryDefaults are the default query constraints applied when the caller
// does not set them explicitly.
type QueryDefaults struct {
	Version            string `yaml:"version,omitempty"`
	Vendor             string `yaml:"vendor,omitempty"`
	JavaFXBundled      bool   `yaml:"javafx_bundled,omitempty"`
	NativeImageCapable bool   `yaml:"native_image_capable,omitempty"`
	StableOnly         *bool  `yaml:"stable_only,omitempty"`
	LTSOnly            bool   `yaml:"lts_only,omitempty"`
	ProductionUseOnly  *bool  `yaml:"production_use_only,omitempty"`
}

// Config is the jdk.yaml file structure.
type Config struct {
	CacheDir          string        `yaml:"cache_dir,omitempty"`
	DiscoBaseURL      string        `yaml:"disco_base_url,omitempty"`
	InstallationPaths []string      `yaml:"installation_paths,omitempty"`
	AutomaticDownload *bool         `yaml:"automatic_download,omitempty"`
	Query             QueryDefaults `yaml:"query,omitempty"`
}

// Load reads and parses a configuration file. An empty path loads the
// first file found by FindConfigFile; if none exists, defaults are
// returned rather than an error.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := FindConfigFile()
		if err != nil {
			return &Config{}, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.CacheDir = expandPath(config.CacheDir)
	for i, p := range config.InstallationPaths {
		config.InstallationPaths[i] = expandPath(p)
	}

	return &config, nil
}

// Save writes the configuration to a YAML file.
func Save(config *Config, path string) error {
	if path == "" {
		path = ConfigFile
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// FindConfigFile locates the configuration file: jdk.yaml in the working
// directory, then .jdk.yaml in the user's home directory.
func FindConfigFile() (string, error) {
	if _, err := os.Stat(ConfigFile); err == nil {
		return ConfigFile, nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		userConfig := filepath.Join(home, UserConfigFile)
		if _, err := os.Stat(userConfig); err == nil {
			return userConfig, nil
		}
	}
	return "", fmt.Errorf("no %s or ~/%s found", ConfigFile, UserConfigFile)
}

// EffectiveCacheDir resolves the cache directory: config file setting
// over the environment variable over the built-in default.
func (c *Config) EffectiveCacheDir() string {
	return provision.ResolveCacheRoot(c.CacheDir)
}

// EffectiveDiscoBaseURL resolves the index endpoint with the same
// precedence as the cache directory.
func (c *Config) EffectiveDiscoBaseURL() string {
	if strings.TrimSpace(c.DiscoBaseURL) != "" {
		return c.DiscoBaseURL
	}
	if env := os.Getenv(EnvDiscoBaseURL); strings.TrimSpace(env) != "" {
		return env
	}
	return disco.DefaultBaseURL
}

// DownloadAllowed reports whether provisioning from the index is
// permitted. Downloads default to allowed.
func (c *Config) DownloadAllowed() bool {
	return c.AutomaticDownload == nil || *c.AutomaticDownload
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], string(os.PathSeparator)))
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

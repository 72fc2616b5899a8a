// Package envs renders the environment variables that activate a JDK
// installation: JAVA_HOME plus a PATH entry for its bin directory.
package envs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flanksource/jdk/pkg/types"
)

// Shell dialects accepted by Render.
const (
	ShellPosix      = "sh"
	ShellFish       = "fish"
	ShellPowershell = "powershell"
	ShellPlain      = "plain"
)

// ForInstallation returns the variables that make inst the active JDK.
// PATH carries the bin directory only; Render splices it in front of the
// caller's PATH in shell syntax.
func ForInstallation(inst types.JdkInstallation) map[string]string {
	return map[string]string{
		"JAVA_HOME": inst.Home,
		"PATH":      filepath.Join(inst.Home, "bin"),
	}
}

// Render formats envs as statements for the given shell dialect. Keys are
// emitted in sorted order so the output is stable.
func Render(envs map[string]string, shell string) (string, error) {
	keys := make([]string, 0, len(envs))
	for k := range envs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		value := envs[key]
		switch shell {
		case ShellPosix:
			if key == "PATH" {
				fmt.Fprintf(&b, "export PATH=%q:\"$PATH\"\n", value)
			} else {
				fmt.Fprintf(&b, "export %s=%q\n", key, value)
			}
		case ShellFish:
			if key == "PATH" {
				fmt.Fprintf(&b, "fish_add_path --prepend %s\n", value)
			} else {
				fmt.Fprintf(&b, "set -gx %s %s\n", key, value)
			}
		case ShellPowershell:
			if key == "PATH" {
				fmt.Fprintf(&b, "$env:Path = \"%s;\" + $env:Path\n", value)
			} else {
				fmt.Fprintf(&b, "$env:%s = \"%s\"\n", key, value)
			}
		case ShellPlain:
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		default:
			return "", fmt.Errorf("unknown shell dialect: %s", shell)
		}
	}
	return b.String(), nil
}

// MergeToSystemEnvironment merges envs into /etc/environment, preserving
// unrelated entries. Requires root.
func MergeToSystemEnvironment(envs map[string]string) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("--system requires root privileges (run with sudo)")
	}
	return mergeEnvironmentFile("/etc/environment", envs)
}

func mergeEnvironmentFile(envFilePath string, envs map[string]string) error {
	existing := make(map[string]string)
	file, err := os.Open(envFilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", envFilePath, err)
	}
	if err == nil {
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.Trim(strings.TrimSpace(parts[1]), "\"")
				existing[key] = value
			}
		}
		file.Close()
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to parse %s: %w", envFilePath, err)
		}
	}

	for key, value := range envs {
		// /etc/environment PATH is a literal value, so splice the bin
		// directory in front of whatever is already recorded.
		if key == "PATH" {
			if current, ok := existing["PATH"]; ok && current != "" && !strings.Contains(current, value) {
				value = value + string(os.PathListSeparator) + current
			} else if ok && strings.Contains(current, value) {
				continue
			}
		}
		existing[key] = value
	}

	keys := make([]string, 0, len(existing))
	for k := range existing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmpFile, err := os.CreateTemp(filepath.Dir(envFilePath), "environment-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	writer := bufio.NewWriter(tmpFile)
	for _, key := range keys {
		if _, err := fmt.Fprintf(writer, "%s=%q\n", key, existing[key]); err != nil {
			tmpFile.Close()
			return fmt.Errorf("failed to write to temp file: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	tmpFile.Close()

	if err := os.Rename(tmpPath, envFilePath); err != nil {
		return fmt.Errorf("failed to update %s: %w", envFilePath, err)
	}
	if err := os.Chmod(envFilePath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", envFilePath, err)
	}
	return nil
}

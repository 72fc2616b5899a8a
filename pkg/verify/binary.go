// Package verify inspects native executable headers to confirm that a JDK
// tree actually targets the platform it was resolved for. A download served
// under the wrong index metadata fails here instead of at first launch.
package verify

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/jdk/pkg/platform"
)

// BinaryInfo is the platform read out of an executable's header.
type BinaryInfo struct {
	OS     platform.OS
	Arch   platform.Arch
	Format string // "elf", "macho", "pe", "unknown"
}

// DetectBinaryPlatform reads the executable format of the file at path and
// returns the OS family and architecture it targets.
func DetectBinaryPlatform(path string) (*BinaryInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, 4)
	if _, err := f.Read(magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}

	switch {
	case magic[0] == 0x7f && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		return detectELF(path)
	case isMachOMagic(magic):
		return detectMachO(path)
	case magic[0] == 'M' && magic[1] == 'Z':
		return detectPE(path)
	}
	return &BinaryInfo{Format: "unknown"}, nil
}

func isMachOMagic(magic []byte) bool {
	known := [][4]byte{
		{0xfe, 0xed, 0xfa, 0xce}, // 32-bit
		{0xfe, 0xed, 0xfa, 0xcf}, // 64-bit
		{0xce, 0xfa, 0xed, 0xfe}, // 32-bit swapped
		{0xcf, 0xfa, 0xed, 0xfe}, // 64-bit swapped
		{0xca, 0xfe, 0xba, 0xbe}, // universal
	}
	for _, k := range known {
		if magic[0] == k[0] && magic[1] == k[1] && magic[2] == k[2] && magic[3] == k[3] {
			return true
		}
	}
	return false
}

func detectELF(path string) (*BinaryInfo, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF: %w", err)
	}
	defer func() { _ = f.Close() }()

	info := &BinaryInfo{OS: platform.Linux, Format: "elf"}
	switch f.Machine {
	case elf.EM_X86_64:
		info.Arch = platform.X64
	case elf.EM_AARCH64:
		info.Arch = platform.Aarch64
	case elf.EM_386:
		info.Arch = platform.X86_32
	case elf.EM_ARM:
		info.Arch = platform.Aarch32
	}
	if info.Arch == "" {
		return nil, fmt.Errorf("unsupported ELF machine type %d", f.Machine)
	}
	return info, nil
}

func detectMachO(path string) (*BinaryInfo, error) {
	f, err := macho.Open(path)
	if err != nil {
		// JDK launchers on macOS ship as fat binaries for some vendors.
		fatFile, fatErr := macho.OpenFat(path)
		if fatErr != nil {
			return nil, fmt.Errorf("failed to parse Mach-O: %w", err)
		}
		defer func() { _ = fatFile.Close() }()
		if len(fatFile.Arches) == 0 {
			return nil, fmt.Errorf("fat Mach-O binary has no architectures")
		}
		return machoCpuToInfo(fatFile.Arches[0].Cpu)
	}
	defer func() { _ = f.Close() }()
	return machoCpuToInfo(f.Cpu)
}

func machoCpuToInfo(cpu macho.Cpu) (*BinaryInfo, error) {
	info := &BinaryInfo{OS: platform.MacOS, Format: "macho"}
	switch cpu {
	case macho.CpuAmd64:
		info.Arch = platform.X64
	case macho.CpuArm64:
		info.Arch = platform.Aarch64
	case macho.Cpu386:
		info.Arch = platform.X86_32
	case macho.CpuArm:
		info.Arch = platform.Aarch32
	default:
		return nil, fmt.Errorf("unsupported Mach-O CPU type %d", cpu)
	}
	return info, nil
}

func detectPE(path string) (*BinaryInfo, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PE: %w", err)
	}
	defer func() { _ = f.Close() }()

	info := &BinaryInfo{OS: platform.Windows, Format: "pe"}
	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		info.Arch = platform.X64
	case pe.IMAGE_FILE_MACHINE_ARM64:
		info.Arch = platform.Aarch64
	case pe.IMAGE_FILE_MACHINE_I386:
		info.Arch = platform.X86_32
	case pe.IMAGE_FILE_MACHINE_ARMNT:
		info.Arch = platform.Aarch32
	default:
		return nil, fmt.Errorf("unsupported PE machine type %d", f.Machine)
	}
	return info, nil
}

// VerifyJavaBinary checks that the java launcher under home targets the
// given OS family and architecture.
func VerifyJavaBinary(home string, expectedOS platform.OS, expectedArch platform.Arch) error {
	java := filepath.Join(home, "bin", "java"+expectedOS.ExeSuffix())
	info, err := DetectBinaryPlatform(java)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", java, err)
	}
	if info.Format == "unknown" {
		return fmt.Errorf("%s is not a recognized executable format", java)
	}
	if info.OS != expectedOS {
		return fmt.Errorf("java binary OS mismatch: expected %s, got %s", expectedOS, info.OS)
	}
	if info.Arch != expectedArch {
		return fmt.Errorf("java binary architecture mismatch: expected %s, got %s", expectedArch, info.Arch)
	}
	return nil
}

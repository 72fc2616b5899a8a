// Package checksum provides hash calculation and verification for
// downloaded JDK archives.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// HashType represents different hash algorithms
type HashType string

const (
	HashTypeMD5    HashType = "md5"
	HashTypeSHA1   HashType = "sha1"
	HashTypeSHA256 HashType = "sha256"
	HashTypeSHA512 HashType = "sha512"
)

// DetectHashType detects the hash type from a checksum string, either from
// an explicit "type:" prefix or from the hex length.
func DetectHashType(checksum string) HashType {
	checksum = strings.TrimSpace(checksum)

	if idx := strings.Index(checksum, ":"); idx >= 0 {
		switch strings.ToLower(strings.TrimSpace(checksum[:idx])) {
		case "md5":
			return HashTypeMD5
		case "sha1":
			return HashTypeSHA1
		case "sha256":
			return HashTypeSHA256
		case "sha512":
			return HashTypeSHA512
		}
		checksum = checksum[idx+1:]
	}
	checksum = strings.TrimSpace(checksum)

	switch len(checksum) {
	case 32:
		return HashTypeMD5
	case 40:
		return HashTypeSHA1
	case 128:
		return HashTypeSHA512
	default:
		return HashTypeSHA256
	}
}

// CreateHasher creates the appropriate hash.Hash for the given type
func CreateHasher(hashType HashType) (hash.Hash, error) {
	switch hashType {
	case HashTypeMD5:
		return md5.New(), nil
	case HashTypeSHA1:
		return sha1.New(), nil
	case HashTypeSHA256:
		return sha256.New(), nil
	case HashTypeSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash type: %s", hashType)
	}
}

// ParseChecksum extracts the checksum value and type from a string,
// guessing the type when no prefix is given.
func ParseChecksum(checksum string) (value string, hashType HashType) {
	checksum = strings.TrimSpace(checksum)

	if idx := strings.Index(checksum, ":"); idx >= 0 {
		return strings.TrimSpace(checksum[idx+1:]), DetectHashType(checksum)
	}
	return checksum, DetectHashType(checksum)
}

// CalculateFileChecksum hashes a local file with the given algorithm and
// returns the lowercase hex digest.
func CalculateFileChecksum(filePath string, hashType HashType) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher, err := CreateHasher(hashType)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// CalculateStringChecksum returns the hex SHA-256 of a string. It is used
// to derive stable cache keys from download URIs.
func CalculateStringChecksum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}

// VerifyChecksum verifies a file against an expected checksum, with or
// without a type prefix. A mismatch is returned as an error naming both
// digests; the file is left in place for inspection.
func VerifyChecksum(filePath, expectedChecksum string) error {
	expectedValue, hashType := ParseChecksum(expectedChecksum)

	actualValue, err := CalculateFileChecksum(filePath, hashType)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}

	if !strings.EqualFold(actualValue, expectedValue) {
		return fmt.Errorf("checksum mismatch for file %s: expected %s:%s, got %s:%s",
			filepath.Base(filePath), hashType, strings.ToLower(expectedValue), hashType, actualValue)
	}

	return nil
}

package spam

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eqlog/eqlog-go/internal/safefile"
)

const (
	// MaxFileSize is the maximum allowed size for an avoid-list file (1MB).
	MaxFileSize = 1 * 1024 * 1024

	// MaxEntryLength is the maximum allowed length for a single entry.
	MaxEntryLength = 512

	// MaxEntryCount is the maximum number of entries allowed in a file.
	MaxEntryCount = 1000

	// SupportedVersion is the currently supported file format version.
	SupportedVersion = 1
)

// File is the YAML document shape for a user-provided avoid-list extension:
//
//	version: 1
//	ignore:
//	  - "Your pet tells you, '"
//	  - "begins to cast a spell"
type File struct {
	Version int      `yaml:"version"`
	Ignore  []string `yaml:"ignore"`
}

// sanitizePathError strips the path from os.PathError so error messages do
// not expose file system paths.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// FromFile loads a YAML avoid-list extension and returns the default list
// extended with its entries. Validation failures are returned at construction
// time, never mid-parse.
func FromFile(path string) (*List, error) {
	f, info, err := safefile.OpenRegular(path)
	if err != nil {
		if errors.Is(err, safefile.ErrNotRegularFile) {
			return nil, errors.New("avoid-list file is not a regular file")
		}
		return nil, fmt.Errorf("failed to open avoid-list file: %w", sanitizePathError(err))
	}
	defer f.Close()

	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("avoid-list file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read avoid-list file: %w", sanitizePathError(err))
	}
	return Parse(data)
}

// Parse validates and applies a YAML avoid-list document.
func Parse(data []byte) (*List, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid avoid-list YAML: %w", err)
	}
	if file.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported avoid-list version %d (want %d)", file.Version, SupportedVersion)
	}
	if len(file.Ignore) > MaxEntryCount {
		return nil, fmt.Errorf("too many avoid-list entries: %d (max %d)", len(file.Ignore), MaxEntryCount)
	}
	for i, entry := range file.Ignore {
		if entry == "" {
			return nil, fmt.Errorf("avoid-list entry %d is empty", i+1)
		}
		if len(entry) > MaxEntryLength {
			return nil, fmt.Errorf("avoid-list entry %d too long: %d bytes (max %d)", i+1, len(entry), MaxEntryLength)
		}
	}
	return Default().Extend(file.Ignore...), nil
}

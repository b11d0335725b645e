// Package logfinder provides EverQuest log directory and file detection,
// including the player-name hint derived from the log filename convention.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// EnvLogDir is the environment variable name for specifying log directory.
const EnvLogDir = "EQLOG_LOGDIR"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// logFilePattern matches the standard log filename convention
// "eqlog_<name>_<server>.txt". The first capture is the character name.
var logFilePattern = regexp.MustCompile(`^eqlog_([A-Za-z]+)_([A-Za-z0-9.]+)\.txt$`)

// PlayerFromFilename derives the logging player's name from a log file path.
// Returns ok=false if the filename does not follow the convention; the
// parser then falls back to critical-hit self-attribution.
func PlayerFromFilename(path string) (name string, ok bool) {
	m := logFilePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// DefaultLogDirs returns candidate log directories in priority order.
// EverQuest writes logs into a Logs directory under the game install.
func DefaultLogDirs() []string {
	var dirs []string
	if programFiles := os.Getenv("PROGRAMFILES(X86)"); programFiles != "" {
		dirs = append(dirs, filepath.Join(programFiles, "Sony", "EverQuest", "Logs"))
	}
	if programFiles := os.Getenv("PROGRAMFILES"); programFiles != "" {
		dirs = append(dirs, filepath.Join(programFiles, "Sony", "EverQuest", "Logs"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "EverQuest", "Logs"))
	}
	return dirs
}

// FindLogDir returns the log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. EQLOG_LOGDIR environment variable
//  3. Auto-detect from DefaultLogDirs()
//
// Returns ErrLogDirNotFound if no valid directory is found.
// The returned path has symlinks resolved for consistency.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid or contains no log files", ErrLogDirNotFound)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveAndValidateLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveAndValidateLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// logCandidate holds a log file path and its cached modification time,
// so files deleted between stat and sort cannot race the selection.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the path to the most recently modified eqlog
// file in the given directory.
//
// Returns ErrNoLogFiles if no log files are found.
func FindLatestLogFile(dir string) (string, error) {
	matches, err := globLogFiles(dir)
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoLogFiles
	}

	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    m,
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})

	return candidates[0].path, nil
}

func globLogFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "eqlog_*.txt"))
	if err != nil {
		return nil, err
	}
	// Glob is looser than the filename convention; keep only real log files.
	out := matches[:0]
	for _, m := range matches {
		if logFilePattern.MatchString(filepath.Base(m)) {
			out = append(out, m)
		}
	}
	return out, nil
}

// resolveAndValidateLogDir resolves symlinks and validates the directory.
// Returns the resolved path if valid, empty string otherwise.
func resolveAndValidateLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}

	matches, err := globLogFiles(resolved)
	if err != nil || len(matches) == 0 {
		return ""
	}

	return resolved
}

// Package safefile provides hardened open helpers for user-supplied paths.
package safefile

import (
	"errors"
	"os"
)

// ErrNotRegularFile is returned for symlinks, FIFOs, devices, sockets and
// directories.
var ErrNotRegularFile = errors.New("not a regular file")

// OpenRegular opens a path and verifies it is a regular file, checking both
// before the open (Lstat, so symlinks are rejected rather than followed) and
// after it (fstat, so a swap between the two is caught). A small window
// between Lstat and Open remains; the standard library does not expose
// O_NOFOLLOW portably.
//
// The caller closes the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}
	return f, info, nil
}

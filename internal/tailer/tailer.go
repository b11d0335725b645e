// Package tailer wraps nxadm/tail with the small surface the follower
// needs: follow a single log file, surviving truncation and re-creation.
package tailer

import (
	"fmt"
	"io"

	"github.com/nxadm/tail"
)

// Config controls where tailing starts.
type Config struct {
	// FromStart reads the file from the beginning instead of seeking to
	// the end first.
	FromStart bool
}

// DefaultConfig tails from the end of the file (tail -f behavior).
func DefaultConfig() Config {
	return Config{}
}

// Tailer follows one log file.
type Tailer struct {
	t *tail.Tail
}

// New starts tailing the given file.
func New(path string, cfg Config) (*Tailer, error) {
	var location *tail.SeekInfo
	if !cfg.FromStart {
		location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("tailing %s: %w", path, err)
	}
	return &Tailer{t: t}, nil
}

// Lines returns the stream of tailed lines. Each line may carry an error
// from the underlying watcher in Line.Err.
func (t *Tailer) Lines() <-chan *tail.Line { return t.t.Lines }

// Stop halts tailing and releases the file.
func (t *Tailer) Stop() error {
	err := t.t.Stop()
	t.t.Cleanup()
	return err
}

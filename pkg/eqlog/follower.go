package eqlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/eqlog/eqlog-go/internal/parser"
	"github.com/eqlog/eqlog-go/internal/tailer"
)

// followerErrBuffer is the buffer size for the error channel. A small buffer
// prevents error loss while the consumer is busy with messages.
const followerErrBuffer = 16

// Sentinel errors for Follower lifecycle misuse.
var (
	ErrFollowerClosed   = fmt.Errorf("follower is closed")
	ErrAlreadyFollowing = fmt.Errorf("follower is already following")
)

// Follower parses a live, growing log file, emitting encounter messages as
// combat closes out. It is the live-mode counterpart of Parser.Run.
type Follower struct {
	path string
	cfg  config

	mu        sync.Mutex
	closed    bool
	following bool
	cancel    context.CancelFunc
	doneCh    chan struct{}
}

// NewFollower creates a follower for the given log file. Does not start
// goroutines; call Follow.
func NewFollower(path string, opts ...Option) (*Follower, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Follower{path: path, cfg: *cfg}, nil
}

// Follow starts tailing and returns the message and error channels. Both
// channels close when ctx is cancelled, Close is called, or the tailer
// stops. Follow can only be called once per Follower.
func (f *Follower) Follow(ctx context.Context) (<-chan Message, <-chan error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, nil, ErrFollowerClosed
	}
	if f.following {
		return nil, nil, ErrAlreadyFollowing
	}
	f.following = true

	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.doneCh = make(chan struct{})

	msgCh := make(chan Message)
	errCh := make(chan error, followerErrBuffer)

	go f.run(ctx, msgCh, errCh)

	return msgCh, errCh, nil
}

// Close stops the follower and blocks until its goroutine has exited.
// Safe to call multiple times.
func (f *Follower) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
	doneCh := f.doneCh
	f.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (f *Follower) run(ctx context.Context, msgCh chan<- Message, errCh chan<- error) {
	defer close(f.doneCh)
	defer close(msgCh)
	defer close(errCh)

	core := f.cfg.newCore()

	tcfg := tailer.DefaultConfig()
	tcfg.FromStart = f.cfg.fromStart
	t, err := tailer.New(f.path, tcfg)
	if err != nil {
		sendError(ctx, errCh, err)
		return
	}
	defer func() { _ = t.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			if line.Err != nil {
				sendError(ctx, errCh, line.Err)
				continue
			}
			core.Append(line.Text)
			if !f.drain(ctx, core, msgCh) {
				return
			}
		}
	}
}

// drain forwards every encounter the core has finalized so far.
func (f *Follower) drain(ctx context.Context, core *parser.Parser, msgCh chan<- Message) bool {
	for {
		enc := core.ParseNext()
		if enc == nil {
			return true
		}
		select {
		case msgCh <- Message{Type: MessageEncounter, Encounter: enc}:
		case <-ctx.Done():
			return false
		}
	}
}

// sendError sends an error without blocking shutdown; errors are dropped
// only if the buffer is full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}

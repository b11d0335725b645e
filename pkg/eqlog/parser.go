package eqlog

import (
	"context"
	"fmt"
	"io"

	"github.com/eqlog/eqlog-go/internal/parser"
	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

// playerUnresolvedMsg is the terminal parse condition: the logging player's
// name was never resolved by end of input. It is reported through the error
// frame of the streaming protocol; already-emitted encounters remain valid.
const playerUnresolvedMsg = "could not determine logging player's name"

// Parser parses one fully materialized combat log, pull-based.
// Each parse owns an independent Parser; instances are not safe for
// concurrent use.
type Parser struct {
	core    *parser.Parser
	flushed bool
}

// NewParser reads the whole input and returns a parser over it.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	core := cfg.newCore()
	if err := core.ReadFrom(r); err != nil {
		return nil, err
	}
	return &Parser{core: core}, nil
}

// ParseNext returns the next finalized encounter, or nil when the input is
// exhausted. At end of input the still-open final encounter is returned if
// it has combatants and positive duration; nil afterwards. There is no
// distinct EOF signal: "done" and "last encounter empty" look the same, by
// design.
func (p *Parser) ParseNext() *encounter.Encounter {
	if e := p.core.ParseNext(); e != nil {
		return e
	}
	if !p.flushed {
		p.flushed = true
		return p.core.Flush()
	}
	return nil
}

// Progress returns the consumed and total line counts.
func (p *Parser) Progress() (current, total int) {
	return p.core.Cursor(), p.core.Total()
}

// LoggedBy returns the resolved player name, or "" if unresolved.
func (p *Parser) LoggedBy() string { return p.core.PlayerName() }

// Span returns the overall first/last event timestamps, epoch millis.
func (p *Parser) Span() (start, end int64) { return p.core.Span() }

// Run drives the parse to completion on its own goroutine and streams the
// message protocol: a progress frame at start, an encounter frame plus a
// progress frame per finalized encounter, and finally either metadata or an
// error frame if the logging player was never resolved. The channel closes
// when the parse finishes or ctx is cancelled; cancellation abandons the
// parse with no checkpoint.
func (p *Parser) Run(ctx context.Context) <-chan Message {
	out := make(chan Message)
	go func() {
		defer close(out)

		if !p.send(ctx, out, p.progressMessage()) {
			return
		}
		for {
			if err := ctx.Err(); err != nil {
				return
			}
			enc := p.ParseNext()
			if enc == nil {
				break
			}
			if !p.send(ctx, out, Message{Type: MessageEncounter, Encounter: enc}) {
				return
			}
			if !p.send(ctx, out, p.progressMessage()) {
				return
			}
		}
		if !p.send(ctx, out, p.progressMessage()) {
			return
		}

		if name := p.LoggedBy(); name != "" {
			start, end := p.Span()
			p.send(ctx, out, Message{
				Type:     MessageMetadata,
				Metadata: &Metadata{LoggedBy: name, Start: start, End: end},
			})
		} else {
			p.send(ctx, out, Message{Type: MessageError, Error: playerUnresolvedMsg})
		}
	}()
	return out
}

func (p *Parser) progressMessage() Message {
	current, total := p.Progress()
	return Message{Type: MessageProgress, Progress: &Progress{Current: current, Total: total}}
}

func (p *Parser) send(ctx context.Context, out chan<- Message, msg Message) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

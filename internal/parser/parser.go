package parser

import (
	"io"
	"log/slog"
	"time"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
	"github.com/eqlog/eqlog-go/pkg/eqlog/spam"
)

// Parser is the single-writer parse state: the line cursor, zone and player
// context, the critical-hit carry, and the encounter lifecycle. One Parser
// owns one parse; it is not safe for concurrent use and never needs to be.
type Parser struct {
	log  *slog.Logger
	spam *spam.List
	gap  time.Duration

	lines  []string
	cursor int

	playerName string
	zone       string
	crit       pendingCrit

	// encounters holds every encounter created so far, current included,
	// for the one retroactive pass in associatePlayer.
	encounters []*encounter.Encounter
	current    *encounter.Encounter
	finalized  []*encounter.Encounter

	overallStart int64
	overallEnd   int64
}

// discardLogger swallows all output; library users opt in to logging.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Config carries construction knobs for the core parser.
type Config struct {
	// PlayerName pre-seeds the logging player's name, typically derived
	// from the log filename. Empty means the name is discovered from
	// critical-hit self-attribution.
	PlayerName string

	// Gap overrides the encounter-splitting quiet period.
	// Zero means DefaultGapThreshold.
	Gap time.Duration

	// Spam overrides the chat-spam avoid list. Nil means the default list.
	Spam *spam.List

	// Logger receives debug output. Nil means discard.
	Logger *slog.Logger
}

// New creates a parser over an empty line buffer. Feed lines with Append.
func New(cfg Config) *Parser {
	p := &Parser{
		log:  cfg.Logger,
		spam: cfg.Spam,
		gap:  cfg.Gap,
	}
	if p.log == nil {
		p.log = discardLogger
	}
	if p.spam == nil {
		p.spam = spam.Default()
	}
	if p.gap <= 0 {
		p.gap = DefaultGapThreshold
	}
	if cfg.PlayerName != "" {
		p.associatePlayer(cfg.PlayerName)
	}
	return p
}

// Append adds raw lines to the buffer. Lines must be appended in log order.
func (p *Parser) Append(lines ...string) {
	p.lines = append(p.lines, lines...)
}

// ReadFrom materializes the whole reader into the line buffer.
func (p *Parser) ReadFrom(r io.Reader) error {
	lines, err := readLines(r)
	if err != nil {
		return err
	}
	p.Append(lines...)
	return nil
}

// ParseNext advances the cursor until an encounter is finalized, returning
// it, or returns nil when the buffer is exhausted. The cursor is preserved
// across calls, so parsing resumes where it left off; in follow mode more
// lines can be appended and ParseNext called again.
//
// Per-line behavior is total: a line that matches no handler is skipped, and
// ambiguous events degrade to warnings on the encounter, never errors.
func (p *Parser) ParseNext() *encounter.Encounter {
	if e := p.takeFinalized(); e != nil {
		return e
	}
	for p.cursor < len(p.lines) {
		ts, msg, ok := splitLine(p.lines[p.cursor])
		if !ok || p.spam.Matches(msg) {
			p.cursor++
			continue
		}
		if h, m := findHandler(msg); h != nil {
			h.interpret(p, ts, m)
		}
		p.cursor++
		if e := p.takeFinalized(); e != nil {
			return e
		}
	}
	return nil
}

// Flush closes out the still-open encounter at end of input. It returns the
// final encounter if it accumulated combatants over a positive duration,
// else nil. Callers cannot distinguish "done" from "last encounter empty";
// that is deliberate, there is no separate EOF signal.
func (p *Parser) Flush() *encounter.Encounter {
	if e := p.takeFinalized(); e != nil {
		return e
	}
	e := p.current
	if e == nil {
		return nil
	}
	p.current = nil
	if e.Start == 0 || e.End-e.Start <= 0 || len(e.Entities) <= 1 {
		return nil
	}
	e.Finalize()
	return e
}

// Cursor returns the number of lines consumed so far.
func (p *Parser) Cursor() int { return p.cursor }

// Total returns the number of lines in the buffer.
func (p *Parser) Total() int { return len(p.lines) }

// PlayerName returns the resolved logging player's name, or "" if the name
// was never resolved.
func (p *Parser) PlayerName() string { return p.playerName }

// Span returns the overall first/last event timestamps seen, epoch millis.
func (p *Parser) Span() (start, end int64) { return p.overallStart, p.overallEnd }

// Zone returns the current zone context.
func (p *Parser) Zone() string { return p.zone }

package eqlog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/eqlog/eqlog-go/internal/parser"
	"github.com/eqlog/eqlog-go/pkg/eqlog/spam"
)

// Option configures a Parser or Follower using the functional options
// pattern.
type Option func(*config)

// config holds internal configuration shared by Parser and Follower.
type config struct {
	playerName string
	gap        time.Duration
	spamList   *spam.List
	logger     *slog.Logger
	fromStart  bool
}

func defaultConfig() *config {
	return &config{
		gap: parser.DefaultGapThreshold,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) validate() error {
	if c.gap <= 0 {
		return fmt.Errorf("gap threshold must be positive, got %v", c.gap)
	}
	return nil
}

func (c *config) newCore() *parser.Parser {
	return parser.New(parser.Config{
		PlayerName: c.playerName,
		Gap:        c.gap,
		Spam:       c.spamList,
		Logger:     c.logger,
	})
}

// WithPlayerName pre-seeds the logging player's name, typically derived from
// the "eqlog_<name>_<server>.txt" filename convention. Without it the name
// is discovered mid-parse from critical-hit self-attribution, and a log that
// never yields that discovery ends with an error message instead of
// metadata.
func WithPlayerName(name string) Option {
	return func(c *config) {
		c.playerName = name
	}
}

// WithGapThreshold overrides the quiet period after which the next combat
// event starts a new encounter. Default: parser.DefaultGapThreshold (10s).
func WithGapThreshold(d time.Duration) Option {
	return func(c *config) {
		c.gap = d
	}
}

// WithSpamList replaces the chat-spam avoid list, e.g. one extended from a
// YAML file via spam.FromFile.
func WithSpamList(l *spam.List) Option {
	return func(c *config) {
		c.spamList = l
	}
}

// WithLogger sets the slog logger for debug output. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithFromStart makes a Follower read the log file from the beginning
// instead of only new lines. Parser ignores this option.
func WithFromStart(fromStart bool) Option {
	return func(c *config) {
		c.fromStart = fromStart
	}
}

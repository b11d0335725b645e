// Package spam provides the chat-spam avoid list used by the parser's line
// dispatch and by the lookahead/lookback engine, so that multi-line event
// disambiguation never sees irrelevant noise.
package spam

import "strings"

// defaultSubstrings are the built-in avoid-list entries. A line whose message
// portion contains any of these is treated as noise everywhere: tells, says,
// shouts, auctions, XP/loot/faction spam, common error strings and
// spell-wear-off notices.
//
// Note the player-chat say form carries a comma ("says, '"); the pet leader
// line ("says 'My leader is ...'") does not, and must stay visible to the
// handlers.
var defaultSubstrings = []string{
	"You told ",
	" tells you, '",
	" says, '",
	"You say, '",
	" shouts, '",
	"You shout, '",
	" auctions, '",
	"You auction, '",
	" says out of character, '",
	"You gain experience",
	"You gain party experience",
	"Your faction standing",
	"You receive ",
	"You have looted ",
	"has looted a ",
	"You cannot see your target",
	"You can't use that command",
	"Your target is out of range",
	"It will take you about ",
	"Your spell fizzles",
	"You haven't recovered yet",
	"spell has worn off",
}

// List is an immutable-after-construction set of substring rules.
type List struct {
	substrings []string
}

// Default returns the built-in avoid list.
func Default() *List {
	return &List{substrings: defaultSubstrings}
}

// Extend returns a new list with the given extra substrings appended to the
// receiver's rules. Empty entries are dropped.
func (l *List) Extend(subs ...string) *List {
	out := make([]string, 0, len(l.substrings)+len(subs))
	out = append(out, l.substrings...)
	for _, s := range subs {
		if s != "" {
			out = append(out, s)
		}
	}
	return &List{substrings: out}
}

// Matches reports whether the message portion of a line is chat spam.
func (l *List) Matches(msg string) bool {
	for _, s := range l.substrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Len returns the number of rules, for diagnostics.
func (l *List) Len() int { return len(l.substrings) }

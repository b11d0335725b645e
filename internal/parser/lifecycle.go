package parser

import (
	"time"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

// DefaultGapThreshold is the quiet period after which the next combat event
// is treated as the start of a new encounter. Together with the discard
// predicate it favors precision over recall: trash fights with no enemy tag,
// no boss and no deaths are dropped rather than flooding the output. Both
// are the first candidates for tuning, so they are named and overridable
// rather than inlined.
const DefaultGapThreshold = 10 * time.Second

// ensureEncounter returns the current encounter, creating an empty
// player-only one in the current zone if none exists.
func (p *Parser) ensureEncounter() *encounter.Encounter {
	if p.current == nil {
		p.current = encounter.New(p.zone, p.playerName)
		p.encounters = append(p.encounters, p.current)
	}
	return p.current
}

// shouldDiscard reports whether an encounter is not worth keeping: nothing
// happened, or nobody was tagged enemy, or it has neither a boss nor a
// recorded death.
func (p *Parser) shouldDiscard(e *encounter.Encounter) bool {
	if e.End-e.Start <= 0 {
		return true
	}
	if !e.HasEnemy() {
		return true
	}
	if !e.HasBoss() && !e.HasDeaths() {
		return true
	}
	return false
}

// observeSpan widens the parser-wide time bounds reported in metadata.
func (p *Parser) observeSpan(ts int64) {
	if ts <= 0 {
		return
	}
	if p.overallStart == 0 || ts < p.overallStart {
		p.overallStart = ts
	}
	if ts > p.overallEnd {
		p.overallEnd = ts
	}
}

// touch feeds one event timestamp to the lifecycle manager. It must be
// called before the event is recorded, so that an event which crosses the
// encounter boundary lands in the fresh encounter.
//
// A gap larger than the threshold triggers the discard-or-emit decision: a
// not-worth-keeping encounter is reset in place (zone carried forward) and
// accumulation continues in the same logical slot; a keeper is finalized and
// handed to the orchestrator while a fresh encounter picks up the incoming
// timestamp as its start.
func (p *Parser) touch(ts int64) {
	p.observeSpan(ts)
	e := p.ensureEncounter()

	if e.Start == 0 {
		e.Start = ts
		e.End = ts
		return
	}

	if ts-e.End > p.gap.Milliseconds() {
		if p.shouldDiscard(e) {
			e.Reset(p.zone, p.playerName)
			e.Start = ts
			e.End = ts
			return
		}
		e.Finalize()
		p.finalized = append(p.finalized, e)
		p.current = encounter.New(p.zone, p.playerName)
		p.current.Start = ts
		p.current.End = ts
		p.encounters = append(p.encounters, p.current)
		return
	}

	if ts > e.End {
		e.End = ts
		e.Duration = e.End - e.Start
	}
}

// closeCurrent applies the discard-or-emit decision to the current encounter
// and drops its accumulated state either way. Used on forced ends (zone
// change, player death) and at end of input.
func (p *Parser) closeCurrent() {
	e := p.current
	if e == nil {
		return
	}
	if p.shouldDiscard(e) {
		e.Reset(p.zone, p.playerName)
		return
	}
	e.Finalize()
	p.finalized = append(p.finalized, e)
	p.current = nil
}

// takeFinalized pops the oldest pending finalized encounter, if any.
// Encounters are always handed out in start-time order.
func (p *Parser) takeFinalized() *encounter.Encounter {
	if len(p.finalized) == 0 {
		return nil
	}
	e := p.finalized[0]
	p.finalized = p.finalized[1:]
	return e
}

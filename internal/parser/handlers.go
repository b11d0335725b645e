package parser

import (
	"fmt"
	"strconv"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

// spellNonMelee is the spell sub-key used when the log does not name the
// spell. Spell-name enrichment is a future enhancement.
const spellNonMelee = "non-melee"

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// entity get-or-creates the entity for a raw log name in the current
// encounter.
func (p *Parser) entity(raw string) *encounter.Entity {
	id, display := p.nameToID(raw)
	return p.ensureEncounter().GetOrCreate(id, display)
}

// recordMelee records one landed swing symmetrically (source outgoing,
// target incoming), feeds the timeline and runs enemy inference.
func (p *Parser) recordMelee(ts int64, src, tgt *encounter.Entity, meleeType string, amount int64, crit bool) {
	src.Outgoing.MeleeFor(tgt.ID, meleeType).Add(amount, crit)
	tgt.Incoming.MeleeFor(src.ID, meleeType).Add(amount, crit)
	p.ensureEncounter().Timeline.Record(ts, encounter.Key{
		Source: src.ID, Target: tgt.ID, Kind: encounter.KindDamage, Name: meleeType,
	}, amount)
	p.manageEnemyState(src, tgt)
}

// recordMeleeMiss records one avoided swing symmetrically. Misses do not
// enter the timeline.
func (p *Parser) recordMeleeMiss(src, tgt *encounter.Entity, meleeType, miss string) {
	src.Outgoing.MeleeFor(tgt.ID, meleeType).Miss(miss)
	tgt.Incoming.MeleeFor(src.ID, meleeType).Miss(miss)
	p.manageEnemyState(src, tgt)
}

// recordSpell records one spell hit symmetrically and feeds the timeline.
func (p *Parser) recordSpell(ts int64, src, tgt *encounter.Entity, name string, amount int64, crit bool) {
	src.Outgoing.SpellFor(tgt.ID, name).Add(amount, crit)
	tgt.Incoming.SpellFor(src.ID, name).Add(amount, crit)
	p.ensureEncounter().Timeline.Record(ts, encounter.Key{
		Source: src.ID, Target: tgt.ID, Kind: encounter.KindDamage, Name: name,
	}, amount)
	p.manageEnemyState(src, tgt)
}

// recordDamageShield records one damage-shield reflection: the shield owner
// is the source, the attacker who triggered it is the target.
func (p *Parser) recordDamageShield(ts int64, owner, victim *encounter.Entity, effect string, amount int64) {
	owner.Outgoing.DamageShieldFor(victim.ID, effect).Add(amount, false)
	victim.Incoming.DamageShieldFor(owner.ID, effect).Add(amount, false)
	p.ensureEncounter().Timeline.Record(ts, encounter.Key{
		Source: owner.ID, Target: victim.ID, Kind: encounter.KindDamage, Name: effect,
	}, amount)
	p.manageEnemyState(owner, victim)
}

// recordHeal records one heal symmetrically and feeds the timeline.
func (p *Parser) recordHeal(ts int64, src, tgt *encounter.Entity, name string, amount int64) {
	src.Outgoing.HealingFor(tgt.ID, name).Add(amount, false)
	tgt.Incoming.HealingFor(src.ID, name).Add(amount, false)
	p.ensureEncounter().Timeline.Record(ts, encounter.Key{
		Source: src.ID, Target: tgt.ID, Kind: encounter.KindHeal, Name: name,
	}, amount)
}

// --- critical-hit carry -----------------------------------------------------

type critKind int8

const (
	critNone critKind = iota
	critMelee
	critSpell
)

// pendingCrit is the explicit "next hit is a critical" carry. Critical
// marker lines are content-free, so the crit is attributed to the next
// matching hit from the same entity.
type pendingCrit struct {
	kind     critKind
	entityID string
}

// consumeCrit clears the carry on the next hit of the matching kind and
// reports whether that hit is the critical one.
func (p *Parser) consumeCrit(kind critKind, entityID string) bool {
	if p.crit.kind != kind {
		return false
	}
	hit := p.crit.entityID == entityID
	p.crit = pendingCrit{}
	return hit
}

// --- handlers ---------------------------------------------------------------

func (p *Parser) handleZoneChange(ts int64, m []string) {
	p.observeSpan(ts)
	p.zone = m[1]
	p.ensureEncounter()
	p.closeCurrent()
	p.log.Debug("zone change", "zone", p.zone)
}

// handleCriticalMelee resolves "<name> scores a critical hit!" against the
// following lines. The marker itself carries no target and no amount.
//
// Self attribution doubles as player-name discovery: a critical marker whose
// follow-up is a first-person melee hit can only be the logging player.
func (p *Parser) handleCriticalMelee(ts int64, m []string) {
	p.touch(ts)
	name := m[1]

	if name == "You" || name == "YOU" {
		p.crit = pendingCrit{kind: critMelee, entityID: encounter.PlayerID}
		return
	}

	// Follow-up is a first-person hit: this is the logging player's crit,
	// and the first time through it reveals the player's real name.
	if next, ok := p.lookAhead(1); ok {
		if _, msg, lineOK := splitLine(next); lineOK && playerMeleeHitRe.MatchString(msg) {
			p.associatePlayer(name)
			p.crit = pendingCrit{kind: critMelee, entityID: encounter.PlayerID}
			return
		}
	}

	id, _ := p.nameToID(name)
	if id == encounter.PlayerID {
		p.crit = pendingCrit{kind: critMelee, entityID: encounter.PlayerID}
		return
	}
	p.resolveEntityCritical(ts, id, name)
}

// resolveEntityCritical walks forward from an other-entity critical marker:
// skip an optional damage-shield self-notice, then scan past unparseable
// lines to the next handleable one. A melee hit from the same entity takes
// the crit; an absorbed swing consumes it; failing both, a same-second kill
// in lookback explains it (the victim died before a damage line could log).
// Anything else is recorded as a warning and dropped. Never throws, never
// blocks the parse.
//
// The forward walk can in pathological logs step over a legitimate but
// differently-shaped follow-on event; that false negative is accepted.
func (p *Parser) resolveEntityCritical(ts int64, id, name string) {
	n := 1
	if next, ok := p.lookAhead(n); ok {
		if _, msg, lineOK := splitLine(next); lineOK {
			switch {
			case spellHitOnPlayerRe.MatchString(msg) || dsEffectRe.MatchString(msg):
				n++
			case npcDamageShieldHitRe.MatchString(msg):
				// Third-person shield notice for the crit-ing entity itself
				// ("a rat was hit by non-melee for 2..."); its effect flavor
				// line tags along.
				dm := npcDamageShieldHitRe.FindStringSubmatch(msg)
				if vid, _ := p.nameToID(dm[1]); vid == id {
					n++
					if after, ok := p.lookAhead(n); ok {
						if _, amsg, aOK := splitLine(after); aOK && dsEffectRe.MatchString(amsg) {
							n++
						}
					}
				}
			}
		}
	}

	for ; ; n++ {
		line, ok := p.lookAhead(n)
		if !ok {
			break
		}
		_, msg, lineOK := splitLine(line)
		if !lineOK {
			continue
		}
		h, captures := findHandler(msg)
		if h == nil {
			continue
		}

		if h.re == npcMeleeHitRe {
			srcID, _ := p.nameToID(captures[1])
			if srcID != id {
				break
			}
			// Consume the hit line here so the main loop does not
			// double-count it.
			if _, ok := p.skipAhead(n); !ok {
				break
			}
			hitTS, _, _ := splitLine(line)
			p.touch(hitTS)
			src := p.entity(captures[1])
			tgt := p.entity(captures[3])
			p.recordMelee(hitTS, src, tgt, meleeVerbSingular[captures[2]], atoi64(captures[4]), true)
			return
		}

		if h.re == npcMeleeMissRe && missKey(captures[4]) == "absorb" {
			// Magical skin absorbed the critical; the miss line itself is
			// handled normally by the main loop.
			return
		}
		break
	}

	// A critical immediately followed by the target's death may have no
	// explicit damage line. Check for a same-second kill by this entity.
	second := ts - ts%1000
	for _, back := range p.lookBack(second) {
		_, msg, lineOK := splitLine(back)
		if !lineOK {
			continue
		}
		if km := npcDeathRe.FindStringSubmatch(msg); km != nil {
			killerID, _ := p.nameToID(km[2])
			if killerID == id {
				return
			}
		}
	}

	p.ensureEncounter().Warn(
		fmt.Sprintf("missed-melee-%s", name),
		fmt.Sprintf("could not attribute critical hit for %s", name),
	)
}

func (p *Parser) handlePlayerMeleeHit(ts int64, m []string) {
	p.touch(ts)
	src := p.entity("YOU")
	tgt := p.entity(m[2])
	crit := p.consumeCrit(critMelee, encounter.PlayerID)
	p.recordMelee(ts, src, tgt, m[1], atoi64(m[3]), crit)
}

func (p *Parser) handlePlayerMeleeMiss(ts int64, m []string) {
	p.touch(ts)
	src := p.entity("YOU")
	tgt := p.entity(m[2])
	p.consumeCrit(critMelee, encounter.PlayerID)
	p.recordMeleeMiss(src, tgt, m[1], missKey(m[3]))
}

// handleNpcDamageShieldHit resolves "<victim> was hit by non-melee for N".
// Attribution needs up to two lines of lookahead: the effect flavor line
// names the shield effect, and the melee swing that triggered the shield
// names its owner. Without the flavor line the damage is generic non-melee
// from an unknown source.
func (p *Parser) handleNpcDamageShieldHit(ts int64, m []string) {
	p.touch(ts)
	victim := p.entity(m[1])
	amount := atoi64(m[2])

	effect := ""
	if next, ok := p.lookAhead(1); ok {
		if _, msg, lineOK := splitLine(next); lineOK {
			if em := dsEffectRe.FindStringSubmatch(msg); em != nil {
				victimID, _ := p.nameToID(em[1])
				if victimID == victim.ID {
					effect = em[2]
				}
			}
		}
	}

	if effect != "" {
		// The swing that triggered the shield identifies the owner.
		if swing, ok := p.lookAhead(2); ok {
			if _, msg, lineOK := splitLine(swing); lineOK {
				if sm := npcMeleeHitRe.FindStringSubmatch(msg); sm != nil {
					srcID, _ := p.nameToID(sm[1])
					if srcID == victim.ID {
						owner := p.entity(sm[3])
						p.recordDamageShield(ts, owner, victim, effect, amount)
						return
					}
				}
			}
		}
		p.ensureEncounter().Warn(
			fmt.Sprintf("ds-owner-%s", victim.ID),
			fmt.Sprintf("could not attribute damage shield (%s) on %s", effect, victim.Name),
		)
		unknown := p.entity(encounter.UnknownID)
		p.recordDamageShield(ts, unknown, victim, effect, amount)
		return
	}

	unknown := p.entity(encounter.UnknownID)
	p.recordSpell(ts, unknown, victim, spellNonMelee, amount, false)
}

func (p *Parser) handleNpcMeleeHit(ts int64, m []string) {
	p.touch(ts)
	src := p.entity(m[1])
	tgt := p.entity(m[3])
	crit := p.consumeCrit(critMelee, src.ID)
	p.recordMelee(ts, src, tgt, meleeVerbSingular[m[2]], atoi64(m[4]), crit)
}

func (p *Parser) handleNpcMeleeMiss(ts int64, m []string) {
	p.touch(ts)
	src := p.entity(m[1])
	tgt := p.entity(m[3])
	p.consumeCrit(critMelee, src.ID)
	p.recordMeleeMiss(src, tgt, m[2], missKey(m[4]))
}

// handlePlayerCriticalSpell arms the spell-crit carry for the logging player.
// The marker is first-person, so when the player's name is still unresolved
// the source of the follow-up non-melee hit reveals it; without that, the
// follow-up would resolve to a raw-name id and the carry could never attach.
func (p *Parser) handlePlayerCriticalSpell(ts int64, m []string) {
	p.touch(ts)
	if p.playerName == "" {
		if next, ok := p.lookAhead(1); ok {
			if _, msg, lineOK := splitLine(next); lineOK {
				if sm := spellHitRe.FindStringSubmatch(msg); sm != nil {
					if id, _ := p.nameToID(sm[1]); id != encounter.PlayerID {
						p.associatePlayer(sm[1])
					}
				}
			}
		}
	}
	p.crit = pendingCrit{kind: critSpell, entityID: encounter.PlayerID}
}

func (p *Parser) handleNpcCriticalSpell(ts int64, m []string) {
	p.touch(ts)
	id, _ := p.nameToID(m[1])
	p.crit = pendingCrit{kind: critSpell, entityID: id}
}

func (p *Parser) handleSpellHit(ts int64, m []string) {
	p.touch(ts)
	src := p.entity(m[1])
	tgt := p.entity(m[2])
	crit := p.consumeCrit(critSpell, src.ID)
	p.recordSpell(ts, src, tgt, spellNonMelee, atoi64(m[3]), crit)
}

func (p *Parser) handleSpellHitOnPlayer(ts int64, m []string) {
	p.touch(ts)
	src := p.entity(encounter.UnknownID)
	tgt := p.entity("YOU")
	crit := p.consumeCrit(critSpell, src.ID)
	p.recordSpell(ts, src, tgt, spellNonMelee, atoi64(m[1]), crit)
}

func (p *Parser) handlePlayerDeath(ts int64, m []string) {
	p.touch(ts)
	killer := p.entity(m[1])
	player := p.entity("YOU")
	player.RecordDeath(ts, killer.ID)
	p.manageEnemyState(killer, player)
	p.closeCurrent()
}

func (p *Parser) handlePlayerKill(ts int64, m []string) {
	p.touch(ts)
	player := p.entity("YOU")
	victim := p.entity(m[1])
	victim.RecordDeath(ts, player.ID)
	p.manageEnemyState(player, victim)
}

func (p *Parser) handleNpcDeath(ts int64, m []string) {
	p.touch(ts)
	victim := p.entity(m[1])
	killer := p.entity(m[2])
	victim.RecordDeath(ts, killer.ID)
	p.manageEnemyState(killer, victim)
}

func (p *Parser) handleHealDelivered(ts int64, m []string) {
	p.touch(ts)
	src := p.entity("YOU")
	tgt := p.entity(m[1])
	p.recordHeal(ts, src, tgt, "heal", atoi64(m[2]))
}

func (p *Parser) handleHealReceived(ts int64, m []string) {
	p.touch(ts)
	src := p.entity(encounter.UnknownID)
	tgt := p.entity("YOU")
	p.recordHeal(ts, src, tgt, "heal", atoi64(m[1]))
}

func (p *Parser) handleSpellResist(ts int64, m []string) {
	p.touch(ts)
	src := p.entity("YOU")
	tgt := p.entity(encounter.UnknownID)
	src.Outgoing.SpellFor(tgt.ID, m[1]).Miss(encounter.MissResist)
	tgt.Incoming.SpellFor(src.ID, m[1]).Miss(encounter.MissResist)
}

func (p *Parser) handlePetLeader(ts int64, m []string) {
	p.observeSpan(ts)
	p.associatePlayerPet(m[1], m[2])
}

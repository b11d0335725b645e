package parser

import (
	"strings"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

// corpseSuffix is the possessive-corpse suffix on damage-over-time lines
// that still log against a corpse ("a rat`s corpse"). Corpse events fold
// into the living entity; a separate corpse entity is never created.
const corpseSuffix = "`s corpse"

// canonicalID case-folds a display name and strips dashes and whitespace,
// absorbing inconsistent log formatting of the same name.
func canonicalID(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

// normalizeName rewrites log capitalization variants ("A rat" -> "a rat")
// and folds corpse references into the living entity's name.
func normalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, corpseSuffix)
	if rest, ok := strings.CutPrefix(name, "A "); ok {
		name = "a " + rest
	} else if rest, ok := strings.CutPrefix(name, "An "); ok {
		name = "an " + rest
	}
	return name
}

// nameToID maps a raw log-name token to a canonical entity id and display
// name. It is pure over the current player-name state: total, idempotent,
// never fails.
func (p *Parser) nameToID(raw string) (id, display string) {
	name := normalizeName(raw)

	if name == "YOU" || name == encounter.PlayerID {
		return encounter.PlayerID, p.playerDisplayName()
	}
	if p.playerName != "" && strings.EqualFold(name, p.playerName) {
		return encounter.PlayerID, p.playerName
	}

	id = canonicalID(name)
	if id == encounter.UnknownID {
		return encounter.UnknownID, encounter.UnknownName
	}
	return id, name
}

// playerDisplayName is the currently known player name, or a placeholder
// while the logging player is still unresolved.
func (p *Parser) playerDisplayName() string {
	if p.playerName != "" {
		return p.playerName
	}
	return "You"
}

// associatePlayer performs the one-shot discovery of the logging player's
// real name. First call wins; later calls are no-ops.
//
// Discovery is retroactive: every encounter tracked so far is walked once,
// renaming the player entity, merging any provisional entity that was
// created under the raw name, re-keying statistics recorded against it and
// rewriting the timeline's source/target ids. This is the only place
// identity resolution looks backward; everything else is forward-only.
func (p *Parser) associatePlayer(name string) {
	if p.playerName != "" || name == "" {
		return
	}
	p.playerName = name
	oldID := canonicalID(normalizeName(name))
	p.log.Debug("resolved logging player", "name", name, "provisional_id", oldID)

	for _, enc := range p.encounters {
		player := enc.Player()
		player.Name = name

		if ghost, ok := enc.Entities[oldID]; ok && ghost != player {
			player.MergeFrom(ghost)
			delete(enc.Entities, oldID)
		}
		for _, ent := range enc.Entities {
			ent.Incoming.RenameCounterpart(oldID, encounter.PlayerID)
			ent.Outgoing.RenameCounterpart(oldID, encounter.PlayerID)
		}
		enc.Timeline.RenameID(oldID, encounter.PlayerID)
	}
}

// associatePlayerPet links a pet to its owner in the current encounter.
// Both entities are get-or-created; no search across other encounters.
func (p *Parser) associatePlayerPet(petName, ownerName string) {
	enc := p.ensureEncounter()
	petID, petDisplay := p.nameToID(petName)
	ownerID, ownerDisplay := p.nameToID(ownerName)
	if petID == ownerID {
		return
	}
	pet := enc.GetOrCreate(petID, petDisplay)
	enc.GetOrCreate(ownerID, ownerDisplay)
	pet.Owner = ownerID
}

// manageEnemyState is a small constraint-propagation rule run after every
// combat interaction between two distinct entities. The player and the
// player's pets are authoritative allies; everything else is inferred lazily
// by negation and never revisited.
//
// Known limitation, kept on purpose: charm-style effects where a former
// enemy starts fighting its own side are not handled.
func (p *Parser) manageEnemyState(source, target *encounter.Entity) {
	if source == nil || target == nil || source == target {
		return
	}
	if source.ID == encounter.PlayerID || source.IsPlayerPet() {
		source.IsEnemy = encounter.FlagNo
		target.IsEnemy = encounter.FlagYes
		return
	}
	if source.IsEnemy.Known() {
		if !target.IsEnemy.Known() {
			target.IsEnemy = source.IsEnemy.Negate()
		}
		return
	}
	if target.IsEnemy.Known() {
		source.IsEnemy = target.IsEnemy.Negate()
	}
}

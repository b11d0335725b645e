// Package encounter defines the combat data model produced by the parser:
// entities, per-direction combat statistics, the second-bucketed timeline
// and the Encounter container itself.
//
// This package is separated from the main eqlog package to avoid import
// cycles between pkg/eqlog and internal/parser.
package encounter

// Reserved entity ids.
const (
	// PlayerID is the canonical id of the logging player. The player's real
	// name is usually not known until partway through the log, so the player
	// is tracked under this reserved id from the start.
	PlayerID = "player"

	// UnknownID is the sentinel id for events whose source could not be
	// attributed (e.g. "You were hit by non-melee ...").
	UnknownID = "unknown"
)

// UnknownName is the display name of the UnknownID sentinel.
const UnknownName = "Unknown"

// Death is one recorded death of an entity.
type Death struct {
	// Timestamp is the death time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// KillerID is the canonical id of the killing entity, if known.
	KillerID string `json:"killerId,omitempty"`
}

// Entity is one combatant: the logging player, a pet, or an NPC.
// Corpse-suffixed log names fold into the living entity, so corpses never
// appear as separate entities.
type Entity struct {
	// ID is the canonical entity id, stable and unique within an Encounter.
	ID string `json:"id"`

	// Name is the display name. For the player this may be empty-ish
	// ("You") until the real name is discovered.
	Name string `json:"name"`

	// IsEnemy records which side of the fight the entity is on, as far as
	// the parser has been able to infer. Once known it is never un-set.
	IsEnemy Flag `json:"isEnemy"`

	// IsBoss marks boss-class entities. Once known it is never un-set.
	IsBoss Flag `json:"isBoss"`

	// IsDead reports whether the entity died during the encounter.
	IsDead bool `json:"isDead"`

	// Owner is the owning entity's id for pets, empty otherwise.
	Owner string `json:"owner,omitempty"`

	// Deaths lists the entity's deaths in log order.
	Deaths []Death `json:"deaths,omitempty"`

	// Incoming accumulates events where this entity is the target.
	Incoming *CombatEvents `json:"incoming"`

	// Outgoing accumulates events where this entity is the source.
	Outgoing *CombatEvents `json:"outgoing"`
}

// NewEntity creates an entity with empty accumulators.
func NewEntity(id, name string) *Entity {
	return &Entity{
		ID:       id,
		Name:     name,
		Incoming: NewCombatEvents(),
		Outgoing: NewCombatEvents(),
	}
}

// RecordDeath marks the entity dead and appends one death event.
func (e *Entity) RecordDeath(ts int64, killerID string) {
	e.IsDead = true
	e.Deaths = append(e.Deaths, Death{Timestamp: ts, KillerID: killerID})
}

// IsPlayerPet reports whether the entity is a pet owned by the logging player.
func (e *Entity) IsPlayerPet() bool { return e.Owner == PlayerID }

// MergeFrom folds another entity's state into this one. Used when a
// provisional entity turns out to be the logging player under a raw name.
func (e *Entity) MergeFrom(o *Entity) {
	if o == nil || o == e {
		return
	}
	e.Incoming.AddFrom(o.Incoming)
	e.Outgoing.AddFrom(o.Outgoing)
	e.Deaths = append(e.Deaths, o.Deaths...)
	if o.IsDead {
		e.IsDead = true
	}
	if !e.IsEnemy.Known() {
		e.IsEnemy = o.IsEnemy
	}
	if !e.IsBoss.Known() {
		e.IsBoss = o.IsBoss
	}
	if e.Owner == "" {
		e.Owner = o.Owner
	}
}

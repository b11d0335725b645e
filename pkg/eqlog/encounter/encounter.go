package encounter

import "github.com/google/uuid"

// Warning records a "could not attribute this event" condition, deduplicated
// by key with a repeat counter so malformed logs do not flood the output.
type Warning struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Encounter is one bounded span of combat between the logging player (and
// allies) and one or more enemies.
//
// The entity map always contains the player entity under PlayerID, even when
// the encounter is otherwise empty.
type Encounter struct {
	// ID is an opaque generated identifier.
	ID string `json:"id"`

	// Start and End are the first and last event times, epoch milliseconds.
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	// Duration is End-Start in milliseconds.
	Duration int64 `json:"duration"`

	// IsOver is set when the encounter is finalized.
	IsOver bool `json:"isOver"`

	// IsBoss is set on finalize when any entity is boss-flagged.
	IsBoss bool `json:"isBoss"`

	// IsFailed is set on finalize when the logging player died during the
	// encounter.
	IsFailed bool `json:"isFailed"`

	// Zone is the zone name if a zone-change line was seen.
	Zone string `json:"zone,omitempty"`

	// Entities maps canonical entity id to entity.
	Entities map[string]*Entity `json:"entities"`

	// Timeline holds the second-bucketed damage/heal amounts.
	Timeline *Timeline `json:"timeline"`

	// Warnings maps warning key to deduplicated warning.
	Warnings map[string]*Warning `json:"warnings,omitempty"`
}

// New creates an empty encounter containing only the player entity.
// playerName may be empty while the logging player is still unresolved.
func New(zone, playerName string) *Encounter {
	e := &Encounter{
		ID:       uuid.NewString(),
		Zone:     zone,
		Entities: make(map[string]*Entity),
		Timeline: NewTimeline(),
	}
	e.seedPlayer(playerName)
	return e
}

func (e *Encounter) seedPlayer(playerName string) {
	p := NewEntity(PlayerID, playerName)
	p.IsEnemy = FlagNo
	e.Entities[PlayerID] = p
}

// Player returns the logging player's entity.
func (e *Encounter) Player() *Entity { return e.Entities[PlayerID] }

// GetOrCreate returns the entity with the given id, creating it on first
// reference.
func (e *Encounter) GetOrCreate(id, name string) *Entity {
	if ent, ok := e.Entities[id]; ok {
		return ent
	}
	ent := NewEntity(id, name)
	e.Entities[id] = ent
	return ent
}

// Warn records a warning, incrementing the count on a repeated key.
func (e *Encounter) Warn(key, message string) {
	if e.Warnings == nil {
		e.Warnings = make(map[string]*Warning)
	}
	if w, ok := e.Warnings[key]; ok {
		w.Count++
		return
	}
	e.Warnings[key] = &Warning{Message: message, Count: 1}
}

// HasEnemy reports whether any entity is known to be an enemy.
func (e *Encounter) HasEnemy() bool {
	for _, ent := range e.Entities {
		if ent.IsEnemy.True() {
			return true
		}
	}
	return false
}

// HasBoss reports whether any entity is boss-flagged.
func (e *Encounter) HasBoss() bool {
	for _, ent := range e.Entities {
		if ent.IsBoss.True() {
			return true
		}
	}
	return false
}

// HasDeaths reports whether any entity recorded a death.
func (e *Encounter) HasDeaths() bool {
	for _, ent := range e.Entities {
		if len(ent.Deaths) > 0 {
			return true
		}
	}
	return false
}

// Finalize marks the encounter over and derives Duration, IsBoss and
// IsFailed.
func (e *Encounter) Finalize() {
	e.IsOver = true
	e.Duration = e.End - e.Start
	e.IsBoss = e.HasBoss()
	p := e.Player()
	e.IsFailed = p != nil && len(p.Deaths) > 0
}

// Reset discards all accumulated state in place, back to an empty player-only
// encounter, keeping object identity. zone is carried forward by the caller.
func (e *Encounter) Reset(zone, playerName string) {
	e.Start = 0
	e.End = 0
	e.Duration = 0
	e.IsOver = false
	e.IsBoss = false
	e.IsFailed = false
	e.Zone = zone
	e.Entities = make(map[string]*Entity)
	e.Timeline = NewTimeline()
	e.Warnings = nil
	e.seedPlayer(playerName)
}

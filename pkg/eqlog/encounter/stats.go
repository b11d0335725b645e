package encounter

// Miss subtype keys used in the Misses maps.
//
// Melee misses use Miss, Block, Parry, Riposte, Dodge, Absorb and Immune.
// Spell misses use Resist, Absorb and Immune.
const (
	MissMiss    = "miss"
	MissBlock   = "block"
	MissParry   = "parry"
	MissRiposte = "riposte"
	MissDodge   = "dodge"
	MissAbsorb  = "absorb"
	MissImmune  = "immune"
	MissResist  = "resist"
)

// Amounts is the shared hit accumulator embedded in every damage variant.
//
// Avg is not a true mean: it is a chained pairwise average where the first
// sample sets the value and every later sample folds in as (avg+sample)/2.
// This over-weights recent samples. It is kept deliberately because every
// downstream consumer of these numbers was built against it.
type Amounts struct {
	Hits  int   `json:"hits"`
	Crits int   `json:"crits"`
	Total int64 `json:"total"`
	Min   int64 `json:"min"`
	Max   int64 `json:"max"`
	Avg   int64 `json:"avg"`
}

// Add folds one landed hit into the accumulator.
func (a *Amounts) Add(amount int64, crit bool) {
	if a.Hits == 0 {
		a.Min = amount
		a.Max = amount
	} else {
		if amount < a.Min {
			a.Min = amount
		}
		if amount > a.Max {
			a.Max = amount
		}
	}
	a.Hits++
	if crit {
		a.Crits++
	}
	a.Total += amount
	if a.Avg == 0 {
		a.Avg = amount
	} else {
		a.Avg = (a.Avg + amount) / 2
	}
}

// AddFrom merges another accumulator into this one. Hits, crits and totals
// are additive, min/max are order-independent, and the average uses the same
// pairwise recurrence as Add so that merging two entities that turn out to be
// the same combatant behaves like interleaved recording.
func (a *Amounts) AddFrom(o *Amounts) {
	if o == nil || o.Hits == 0 {
		return
	}
	if a.Hits == 0 {
		a.Min = o.Min
		a.Max = o.Max
	} else {
		if o.Min < a.Min {
			a.Min = o.Min
		}
		if o.Max > a.Max {
			a.Max = o.Max
		}
	}
	a.Hits += o.Hits
	a.Crits += o.Crits
	a.Total += o.Total
	if a.Avg == 0 {
		a.Avg = o.Avg
	} else if o.Avg != 0 {
		a.Avg = (a.Avg + o.Avg) / 2
	}
}

// MeleeDamage accumulates one melee attack type (crush, slash, ...) against
// one counterpart.
type MeleeDamage struct {
	Amounts
	Misses map[string]int `json:"misses,omitempty"`
}

// Miss counts one avoided swing under the given miss subtype.
func (m *MeleeDamage) Miss(key string) {
	if m.Misses == nil {
		m.Misses = make(map[string]int)
	}
	m.Misses[key]++
}

// SpellDamage accumulates direct spell damage against one counterpart,
// keyed by spell name (or "non-melee" when the name is not in the log).
type SpellDamage struct {
	Amounts
	Misses map[string]int `json:"misses,omitempty"`
}

// Miss counts one resisted/absorbed cast under the given miss subtype.
func (s *SpellDamage) Miss(key string) {
	if s.Misses == nil {
		s.Misses = make(map[string]int)
	}
	s.Misses[key]++
}

// DamageShieldDamage accumulates damage-shield reflections, keyed by the
// shield effect name.
type DamageShieldDamage struct {
	Amounts
}

// Healing accumulates healing received or delivered.
type Healing struct {
	Amounts
}

func mergeMisses(dst map[string]int, src map[string]int) map[string]int {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]int, len(src))
	}
	for k, v := range src {
		dst[k] += v
	}
	return dst
}

// CombatEvents is one direction (incoming or outgoing) of an entity's
// statistics, keyed first by the other party's entity id and then by the
// damage/heal sub-key.
type CombatEvents struct {
	Melee        map[string]map[string]*MeleeDamage        `json:"melee,omitempty"`
	Spell        map[string]map[string]*SpellDamage        `json:"spell,omitempty"`
	DamageShield map[string]map[string]*DamageShieldDamage `json:"damageShield,omitempty"`
	Healing      map[string]map[string]*Healing            `json:"healing,omitempty"`
}

// NewCombatEvents returns an empty accumulator.
func NewCombatEvents() *CombatEvents {
	return &CombatEvents{}
}

// MeleeFor returns the melee accumulator for (counterpart, meleeType),
// creating it on first use.
func (c *CombatEvents) MeleeFor(counterpart, meleeType string) *MeleeDamage {
	if c.Melee == nil {
		c.Melee = make(map[string]map[string]*MeleeDamage)
	}
	byType := c.Melee[counterpart]
	if byType == nil {
		byType = make(map[string]*MeleeDamage)
		c.Melee[counterpart] = byType
	}
	m := byType[meleeType]
	if m == nil {
		m = &MeleeDamage{}
		byType[meleeType] = m
	}
	return m
}

// SpellFor returns the spell accumulator for (counterpart, spellName),
// creating it on first use.
func (c *CombatEvents) SpellFor(counterpart, spellName string) *SpellDamage {
	if c.Spell == nil {
		c.Spell = make(map[string]map[string]*SpellDamage)
	}
	byName := c.Spell[counterpart]
	if byName == nil {
		byName = make(map[string]*SpellDamage)
		c.Spell[counterpart] = byName
	}
	s := byName[spellName]
	if s == nil {
		s = &SpellDamage{}
		byName[spellName] = s
	}
	return s
}

// DamageShieldFor returns the damage-shield accumulator for
// (counterpart, effect), creating it on first use.
func (c *CombatEvents) DamageShieldFor(counterpart, effect string) *DamageShieldDamage {
	if c.DamageShield == nil {
		c.DamageShield = make(map[string]map[string]*DamageShieldDamage)
	}
	byEffect := c.DamageShield[counterpart]
	if byEffect == nil {
		byEffect = make(map[string]*DamageShieldDamage)
		c.DamageShield[counterpart] = byEffect
	}
	d := byEffect[effect]
	if d == nil {
		d = &DamageShieldDamage{}
		byEffect[effect] = d
	}
	return d
}

// HealingFor returns the healing accumulator for (counterpart, name),
// creating it on first use.
func (c *CombatEvents) HealingFor(counterpart, name string) *Healing {
	if c.Healing == nil {
		c.Healing = make(map[string]map[string]*Healing)
	}
	byName := c.Healing[counterpart]
	if byName == nil {
		byName = make(map[string]*Healing)
		c.Healing[counterpart] = byName
	}
	h := byName[name]
	if h == nil {
		h = &Healing{}
		byName[name] = h
	}
	return h
}

// AddFrom merges another direction-bag into this one.
func (c *CombatEvents) AddFrom(o *CombatEvents) {
	if o == nil {
		return
	}
	for counterpart, byType := range o.Melee {
		for meleeType, other := range byType {
			m := c.MeleeFor(counterpart, meleeType)
			m.AddFrom(&other.Amounts)
			m.Misses = mergeMisses(m.Misses, other.Misses)
		}
	}
	for counterpart, byName := range o.Spell {
		for spellName, other := range byName {
			s := c.SpellFor(counterpart, spellName)
			s.AddFrom(&other.Amounts)
			s.Misses = mergeMisses(s.Misses, other.Misses)
		}
	}
	for counterpart, byEffect := range o.DamageShield {
		for effect, other := range byEffect {
			c.DamageShieldFor(counterpart, effect).AddFrom(&other.Amounts)
		}
	}
	for counterpart, byName := range o.Healing {
		for name, other := range byName {
			c.HealingFor(counterpart, name).AddFrom(&other.Amounts)
		}
	}
}

// RenameCounterpart re-keys all statistics recorded against oldID to newID,
// merging with any statistics already recorded against newID. Used when a
// provisional entity id turns out to be the logging player.
func (c *CombatEvents) RenameCounterpart(oldID, newID string) {
	if oldID == newID {
		return
	}
	if byType, ok := c.Melee[oldID]; ok {
		for meleeType, other := range byType {
			m := c.MeleeFor(newID, meleeType)
			m.AddFrom(&other.Amounts)
			m.Misses = mergeMisses(m.Misses, other.Misses)
		}
		delete(c.Melee, oldID)
	}
	if byName, ok := c.Spell[oldID]; ok {
		for spellName, other := range byName {
			s := c.SpellFor(newID, spellName)
			s.AddFrom(&other.Amounts)
			s.Misses = mergeMisses(s.Misses, other.Misses)
		}
		delete(c.Spell, oldID)
	}
	if byEffect, ok := c.DamageShield[oldID]; ok {
		for effect, other := range byEffect {
			c.DamageShieldFor(newID, effect).AddFrom(&other.Amounts)
		}
		delete(c.DamageShield, oldID)
	}
	if byName, ok := c.Healing[oldID]; ok {
		for name, other := range byName {
			c.HealingFor(newID, name).AddFrom(&other.Amounts)
		}
		delete(c.Healing, oldID)
	}
}

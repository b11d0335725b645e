// Package parser implements the combat-log parsing core: the ordered line
// handler table, entity identity resolution, lookahead/lookback
// disambiguation and the encounter lifecycle.
package parser

import (
	"regexp"
	"strings"
	"time"
)

// Timestamp envelope on every meaningful line:
// "[Mon Dec 23 23:02:01 2024] <message>".
// The _2 layout element accepts both zero- and space-padded days.
const timestampLayout = "Mon Jan _2 15:04:05 2006"

var linePattern = regexp.MustCompile(`^\[([A-Z][a-z]{2} [A-Z][a-z]{2} [ 0-9]\d \d{2}:\d{2}:\d{2} \d{4})\] (.*)$`)

// splitLine separates the timestamp envelope from the message portion.
// Lines without the envelope are not log events.
func splitLine(line string) (tsMillis int64, msg string, ok bool) {
	line = strings.TrimRight(line, "\r")
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	ts, err := time.ParseInLocation(timestampLayout, m[1], time.Local)
	if err != nil {
		return 0, "", false
	}
	return ts.UnixMilli(), m[2], true
}

// Singular melee verbs as they appear in first-person lines ("You crush ...").
const meleeVerbsSingular = `bash|bite|claw|crush|gore|hit|kick|maul|pierce|punch|slash|slice|smash|sting|strike|backstab`

// Plural melee verbs as they appear in third-person lines ("A rat bites ...").
const meleeVerbsPlural = `bashes|bites|claws|crushes|gores|hits|kicks|mauls|pierces|punches|slashes|slices|smashes|stings|strikes|backstabs`

// meleeVerbSingular normalizes the third-person verb to the statistic key.
var meleeVerbSingular = map[string]string{
	"bashes":    "bash",
	"bites":     "bite",
	"claws":     "claw",
	"crushes":   "crush",
	"gores":     "gore",
	"hits":      "hit",
	"kicks":     "kick",
	"mauls":     "maul",
	"pierces":   "pierce",
	"punches":   "punch",
	"slashes":   "slash",
	"slices":    "slice",
	"smashes":   "smash",
	"stings":    "sting",
	"strikes":   "strike",
	"backstabs": "backstab",
}

// missVerbKey normalizes the avoidance verb at the end of a miss line
// ("... but a rat dodges!") to the statistic key.
var missVerbKey = map[string]string{
	"dodge":    "dodge",
	"dodges":   "dodge",
	"parry":    "parry",
	"parries":  "parry",
	"riposte":  "riposte",
	"ripostes": "riposte",
	"block":    "block",
	"blocks":   "block",
}

// missKey translates the tail of a miss line ("but <tail>!") into a miss
// subtype key. The two standalone special tokens map to absorb/immune rather
// than being parsed generically.
func missKey(tail string) string {
	switch {
	case tail == "miss" || tail == "misses":
		return "miss"
	case strings.Contains(tail, "magical skin absorbs the blow"):
		return "absorb"
	case strings.Contains(tail, "INVULNERABLE"):
		return "immune"
	}
	fields := strings.Fields(tail)
	if len(fields) > 0 {
		if k, ok := missVerbKey[fields[len(fields)-1]]; ok {
			return k
		}
	}
	return "miss"
}

// Compiled patterns for the handler table and for the multi-line resolution
// logic that needs to re-test specific shapes during lookahead.
var (
	zoneChangeRe = regexp.MustCompile(`^You have entered (.+)\.$`)

	criticalMeleeRe = regexp.MustCompile(`^(.+?) scores a critical hit!\s*(?:\((\d+)\))?$`)

	playerMeleeHitRe = regexp.MustCompile(`^You (` + meleeVerbsSingular + `) (.+?) for (\d+) points? of damage\.$`)

	playerMeleeMissRe = regexp.MustCompile(`^You try to (` + meleeVerbsSingular + `) (.+?), but (.+?)!$`)

	npcDamageShieldHitRe = regexp.MustCompile(`^(.+?) was hit by non-melee for (\d+) points? of damage\.$`)

	npcMeleeHitRe = regexp.MustCompile(`^(.+?) (` + meleeVerbsPlural + `) (.+?) for (\d+) points? of damage\.$`)

	npcMeleeMissRe = regexp.MustCompile(`^(.+?) tries to (` + meleeVerbsSingular + `) (.+?), but (.+?)!$`)

	playerCriticalSpellRe = regexp.MustCompile(`^You deliver a critical blast!\s*(?:\((\d+)\))?$`)

	npcCriticalSpellRe = regexp.MustCompile(`^(.+?) delivers a critical blast!\s*(?:\((\d+)\))?$`)

	spellHitRe = regexp.MustCompile(`^(.+?) hit (.+?) for (\d+) points? of non-melee damage\.$`)

	spellHitOnPlayerRe = regexp.MustCompile(`^You were hit by non-melee for (\d+) points? of damage\.$`)

	playerDeathRe = regexp.MustCompile(`^You have been slain by (.+?)!$`)

	playerKillRe = regexp.MustCompile(`^You have slain (.+?)!$`)

	npcDeathRe = regexp.MustCompile(`^(.+?) has been slain by (.+?)!$`)

	// Supplemental shapes, appended after the required ordering above.
	healDeliveredRe = regexp.MustCompile(`^You have healed (.+?) for (\d+) points?\.$`)

	healReceivedRe = regexp.MustCompile(`^You have been healed for (\d+) points?\.$`)

	spellResistRe = regexp.MustCompile(`^Your target resisted the (.+?) spell\.$`)

	petLeaderRe = regexp.MustCompile(`^(.+?) says 'My leader is (.+?)\.'$`)

	// Damage-shield flavor line: "A rat is pierced by thorns." /
	// "YOU are burned by flames!". Captures the victim and the effect name.
	dsEffectRe = regexp.MustCompile(`^(.+?) (?:is|are) (?:\w+) by (.+?)[.!]$`)
)

// handler is one (pattern, interpreter) rule of the dispatch table.
type handler struct {
	name      string
	re        *regexp.Regexp
	interpret func(p *Parser, ts int64, m []string)
}

// handlers is the ordered dispatch table. Order is a correctness invariant,
// not an implementation detail: several shapes are near-ambiguous prefixes of
// later ones (a damage-shield "was hit by non-melee" line would otherwise be
// swallowed by the generic NPC melee-hit rule). First match wins; a line
// matching no rule is ignored.
//
// Populated in init: the critical-melee interpreter re-enters findHandler
// during lookahead resolution, so a composite literal here would form an
// initialization cycle.
var handlers []handler

func init() {
	handlers = []handler{
		{"zone-change", zoneChangeRe, (*Parser).handleZoneChange},
		{"critical-melee", criticalMeleeRe, (*Parser).handleCriticalMelee},
		{"player-melee-hit", playerMeleeHitRe, (*Parser).handlePlayerMeleeHit},
		{"player-melee-miss", playerMeleeMissRe, (*Parser).handlePlayerMeleeMiss},
		{"npc-damage-shield-hit", npcDamageShieldHitRe, (*Parser).handleNpcDamageShieldHit},
		{"npc-melee-hit", npcMeleeHitRe, (*Parser).handleNpcMeleeHit},
		{"npc-melee-miss", npcMeleeMissRe, (*Parser).handleNpcMeleeMiss},
		{"player-critical-spell", playerCriticalSpellRe, (*Parser).handlePlayerCriticalSpell},
		{"npc-critical-spell", npcCriticalSpellRe, (*Parser).handleNpcCriticalSpell},
		{"spell-hit", spellHitRe, (*Parser).handleSpellHit},
		{"spell-hit-on-player", spellHitOnPlayerRe, (*Parser).handleSpellHitOnPlayer},
		{"player-death", playerDeathRe, (*Parser).handlePlayerDeath},
		{"player-kill", playerKillRe, (*Parser).handlePlayerKill},
		{"npc-death", npcDeathRe, (*Parser).handleNpcDeath},
		{"heal-delivered", healDeliveredRe, (*Parser).handleHealDelivered},
		{"heal-received", healReceivedRe, (*Parser).handleHealReceived},
		{"spell-resist", spellResistRe, (*Parser).handleSpellResist},
		{"pet-leader", petLeaderRe, (*Parser).handlePetLeader},
	}
}

// findHandler returns the first matching rule and its captures.
func findHandler(msg string) (*handler, []string) {
	for i := range handlers {
		if m := handlers[i].re.FindStringSubmatch(msg); m != nil {
			return &handlers[i], m
		}
	}
	return nil, nil
}

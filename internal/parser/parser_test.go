package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

var baseTime = time.Date(2024, time.May, 15, 10, 0, 0, 0, time.Local)

// logLine builds one enveloped log line at baseTime+offset seconds.
func logLine(offsetSec int, msg string) string {
	ts := baseTime.Add(time.Duration(offsetSec) * time.Second)
	return "[" + ts.Format(timestampLayout) + "] " + msg
}

func newTestParser(playerName string, lines ...string) *Parser {
	p := New(Config{PlayerName: playerName})
	p.Append(lines...)
	return p
}

func TestParse_PlayerMeleeStats(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(2, "You crush a rat for 15 points of damage."),
		logLine(4, "You have slain a rat!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil before flush", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
	if !enc.IsOver {
		t.Error("IsOver = false, want true")
	}
	if enc.Duration != 4000 {
		t.Errorf("Duration = %d, want 4000", enc.Duration)
	}
	if enc.IsFailed {
		t.Error("IsFailed = true, want false")
	}

	out := enc.Player().Outgoing.Melee["arat"]["crush"]
	if out == nil {
		t.Fatal("player outgoing crush vs arat missing")
	}
	if out.Hits != 2 || out.Crits != 0 || out.Total != 25 {
		t.Errorf("hits/crits/total = %d/%d/%d, want 2/0/25", out.Hits, out.Crits, out.Total)
	}
	if out.Min != 10 || out.Max != 15 {
		t.Errorf("min/max = %d/%d, want 10/15", out.Min, out.Max)
	}
	// Pairwise average: 10, then (10+15)/2.
	if out.Avg != 12 {
		t.Errorf("avg = %d, want 12", out.Avg)
	}

	rat := enc.Entities["arat"]
	if rat == nil {
		t.Fatal("entity arat missing")
	}
	in := rat.Incoming.Melee[encounter.PlayerID]["crush"]
	if in == nil || in.Hits != out.Hits || in.Total != out.Total || in.Avg != out.Avg {
		t.Errorf("incoming mirror = %+v, want mirror of %+v", in, out)
	}
	if rat.Name != "a rat" {
		t.Errorf("rat name = %q, want %q", rat.Name, "a rat")
	}
	if !rat.IsEnemy.True() {
		t.Error("rat IsEnemy not set")
	}
	if !rat.IsDead || len(rat.Deaths) != 1 || rat.Deaths[0].KillerID != encounter.PlayerID {
		t.Errorf("rat death state = dead=%v deaths=%+v", rat.IsDead, rat.Deaths)
	}

	if got := len(enc.Timeline.Buckets); got != 2 {
		t.Errorf("timeline buckets = %d, want 2", got)
	}

	if got := p.Flush(); got != nil {
		t.Errorf("second Flush() = %+v, want nil", got)
	}
}

func TestParse_GapSplitsEncounters(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(2, "You crush a rat for 15 points of damage."),
		logLine(3, "You have slain a rat!"),
		logLine(30, "You crush a snake for 5 points of damage."),
	)

	first := p.ParseNext()
	if first == nil {
		t.Fatal("ParseNext() = nil, want finalized encounter after gap")
	}
	if first.Duration != 3000 {
		t.Errorf("first duration = %d, want 3000", first.Duration)
	}
	if _, ok := first.Entities["arat"]; !ok {
		t.Error("first encounter missing arat")
	}
	if _, ok := first.Entities["asnake"]; ok {
		t.Error("first encounter contains asnake, want it in the next one")
	}

	if got := p.ParseNext(); got != nil {
		t.Errorf("ParseNext() = %+v, want nil", got)
	}
	// The trailing encounter is a single instant, nothing to emit.
	if got := p.Flush(); got != nil {
		t.Errorf("Flush() = %+v, want nil for zero-duration tail", got)
	}
}

func TestParse_GapDiscardsUneventfulEncounter(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(2, "You crush a rat for 12 points of damage."),
		logLine(30, "You crush a snake for 5 points of damage."),
		logLine(32, "You have slain a snake!"),
	)

	// The rat segment has no boss and no deaths: dropped, not emitted.
	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil (first segment discarded)", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want snake encounter")
	}
	if enc.Duration != 2000 {
		t.Errorf("duration = %d, want 2000", enc.Duration)
	}
	if _, ok := enc.Entities["arat"]; ok {
		t.Error("discarded rat segment leaked into the next encounter")
	}
	if _, ok := enc.Entities["asnake"]; !ok {
		t.Error("snake entity missing")
	}
}

func TestParse_PlayerDeathClosesEncounter(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat bites YOU for 10 points of damage."),
		logLine(2, "You have been slain by a rat!"),
	)

	enc := p.ParseNext()
	if enc == nil {
		t.Fatal("ParseNext() = nil, want encounter closed by player death")
	}
	if !enc.IsFailed {
		t.Error("IsFailed = false, want true")
	}
	player := enc.Player()
	if !player.IsDead || len(player.Deaths) != 1 || player.Deaths[0].KillerID != "arat" {
		t.Errorf("player death state = dead=%v deaths=%+v", player.IsDead, player.Deaths)
	}
	rat := enc.Entities["arat"]
	if rat == nil || !rat.IsEnemy.True() {
		t.Error("killer not inferred as enemy")
	}
}

func TestParse_PlayerNameDiscovery(t *testing.T) {
	p := newTestParser("",
		logLine(0, "a rat bites Tarim for 5 points of damage."),
		logLine(1, "Tarim scores a critical hit!"),
		logLine(1, "You crush a rat for 30 points of damage."),
		logLine(2, "You have slain a rat!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	if got := p.PlayerName(); got != "Tarim" {
		t.Fatalf("PlayerName() = %q, want %q", got, "Tarim")
	}
	if _, ok := enc.Entities["tarim"]; ok {
		t.Error("provisional tarim entity survived the rename")
	}
	player := enc.Player()
	if player.Name != "Tarim" {
		t.Errorf("player name = %q, want %q", player.Name, "Tarim")
	}

	// The pre-discovery bite was merged into the player.
	bite := player.Incoming.Melee["arat"]["bite"]
	if bite == nil || bite.Total != 5 {
		t.Errorf("merged incoming bite = %+v, want total 5", bite)
	}
	// And the rat's outgoing stats were re-keyed.
	if _, ok := enc.Entities["arat"].Outgoing.Melee[encounter.PlayerID]; !ok {
		t.Error("rat outgoing stats not re-keyed to player")
	}
	if _, ok := enc.Entities["arat"].Outgoing.Melee["tarim"]; ok {
		t.Error("rat outgoing stats still keyed by provisional id")
	}

	crush := player.Outgoing.Melee["arat"]["crush"]
	if crush == nil || crush.Hits != 1 || crush.Crits != 1 || crush.Total != 30 {
		t.Errorf("crush = %+v, want 1 hit, 1 crit, total 30", crush)
	}
}

func TestParse_NpcCriticalResolution(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat scores a critical hit!"),
		logLine(0, "a rat bites YOU for 20 points of damage."),
		logLine(2, "a rat bites YOU for 7 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	bite := enc.Entities["arat"].Outgoing.Melee[encounter.PlayerID]["bite"]
	if bite == nil {
		t.Fatal("rat outgoing bite missing")
	}
	if bite.Hits != 2 || bite.Crits != 1 || bite.Total != 27 {
		t.Errorf("hits/crits/total = %d/%d/%d, want 2/1/27", bite.Hits, bite.Crits, bite.Total)
	}
	if bite.Min != 7 || bite.Max != 20 {
		t.Errorf("min/max = %d/%d, want 7/20", bite.Min, bite.Max)
	}
}

func TestParse_NpcCriticalAfterShieldNotice(t *testing.T) {
	// The crit-ing entity swung into a damage shield: its own third-person
	// notice and the effect flavor line land between the marker and the hit.
	p := newTestParser("Tarim",
		logLine(0, "a rat scores a critical hit!"),
		logLine(0, "a rat was hit by non-melee for 2 points of damage."),
		logLine(0, "a rat is pierced by thorns."),
		logLine(0, "a rat bites Guard for 20 points of damage."),
		logLine(2, "a rat bites Guard for 7 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	bite := enc.Entities["arat"].Outgoing.Melee["guard"]["bite"]
	if bite == nil {
		t.Fatal("rat outgoing bite missing")
	}
	if bite.Hits != 2 || bite.Crits != 1 || bite.Total != 27 {
		t.Errorf("hits/crits/total = %d/%d/%d, want 2/1/27", bite.Hits, bite.Crits, bite.Total)
	}
	if len(enc.Warnings) != 0 {
		t.Errorf("warnings = %+v, want none", enc.Warnings)
	}
	// The notice and flavor lines are part of the critical resolution and
	// are not re-handled on their own.
	if ds := enc.Entities["arat"].Incoming.DamageShield; len(ds) != 0 {
		t.Errorf("incoming damage shield = %+v, want none", ds)
	}
}

func TestParse_CriticalWithoutFollowupWarns(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat scores a critical hit!"),
	)
	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	if p.current == nil {
		t.Fatal("no current encounter")
	}
	if _, ok := p.current.Warnings["missed-melee-a rat"]; !ok {
		t.Errorf("warnings = %+v, want missed-melee-a rat", p.current.Warnings)
	}
}

func TestParse_CriticalExplainedBySameSecondKill(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat has been slain by Guard!"),
		logLine(0, "Guard scores a critical hit!"),
	)
	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	if len(p.current.Warnings) != 0 {
		t.Errorf("warnings = %+v, want none (kill explains the critical)", p.current.Warnings)
	}
}

func TestParse_DamageShieldAttribution(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat was hit by non-melee for 5 points of damage."),
		logLine(0, "a rat is pierced by thorns."),
		logLine(0, "a rat bites Guard for 10 points of damage."),
		logLine(2, "a rat bites Guard for 8 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	guard := enc.Entities["guard"]
	if guard == nil {
		t.Fatal("guard entity missing")
	}
	ds := guard.Outgoing.DamageShield["arat"]["thorns"]
	if ds == nil || ds.Total != 5 || ds.Hits != 1 {
		t.Errorf("guard outgoing damage shield = %+v, want 1 hit total 5", ds)
	}
	mirror := enc.Entities["arat"].Incoming.DamageShield["guard"]["thorns"]
	if mirror == nil || mirror.Total != 5 {
		t.Errorf("rat incoming damage shield = %+v, want total 5", mirror)
	}
	// The triggering swings are still recorded normally.
	bite := enc.Entities["arat"].Outgoing.Melee["guard"]["bite"]
	if bite == nil || bite.Hits != 2 || bite.Total != 18 {
		t.Errorf("rat bite vs guard = %+v, want 2 hits total 18", bite)
	}
}

func TestParse_NonMeleeWithoutFlavorIsUnknownSpell(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "a rat was hit by non-melee for 5 points of damage."),
		logLine(2, "a rat was hit by non-melee for 6 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	sp := enc.Entities["arat"].Incoming.Spell[encounter.UnknownID]["non-melee"]
	if sp == nil || sp.Hits != 2 || sp.Total != 11 {
		t.Errorf("unattributed spell damage = %+v, want 2 hits total 11", sp)
	}
	if unknown := enc.Entities[encounter.UnknownID]; unknown == nil || unknown.Name != encounter.UnknownName {
		t.Errorf("unknown entity = %+v", unknown)
	}
}

func TestParse_SpamSkippedInLookahead(t *testing.T) {
	p := newTestParser("",
		logLine(0, "Tarim scores a critical hit!"),
		logLine(0, "Soandso says, 'I am selling swords'"),
		logLine(0, "You crush a rat for 30 points of damage."),
		logLine(2, "You have slain a rat!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
	if got := p.PlayerName(); got != "Tarim" {
		t.Errorf("PlayerName() = %q, want Tarim (discovery across spam)", got)
	}
	crush := enc.Player().Outgoing.Melee["arat"]["crush"]
	if crush == nil || crush.Crits != 1 {
		t.Errorf("crush = %+v, want 1 crit", crush)
	}
}

func TestParse_ZoneChangeClosesEncounter(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You have entered East Commonlands."),
		logLine(1, "a rat bites YOU for 5 points of damage."),
		logLine(3, "You have slain a rat!"),
		logLine(5, "You have entered North Ro."),
	)

	enc := p.ParseNext()
	if enc == nil {
		t.Fatal("ParseNext() = nil, want encounter closed by zone change")
	}
	if enc.Zone != "East Commonlands" {
		t.Errorf("encounter zone = %q, want East Commonlands", enc.Zone)
	}
	if enc.Duration != 2000 {
		t.Errorf("duration = %d, want 2000", enc.Duration)
	}
	if got := p.Zone(); got != "North Ro" {
		t.Errorf("Zone() = %q, want North Ro", got)
	}
}

func TestParse_SpellCritical(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You deliver a critical blast!"),
		logLine(0, "Tarim hit a rat for 100 points of non-melee damage."),
		logLine(2, "You have slain a rat!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
	sp := enc.Player().Outgoing.Spell["arat"]["non-melee"]
	if sp == nil || sp.Hits != 1 || sp.Crits != 1 || sp.Total != 100 {
		t.Errorf("spell = %+v, want 1 hit, 1 crit, total 100", sp)
	}
}

func TestParse_SpellCriticalRevealsPlayerName(t *testing.T) {
	// First-person marker with an unresolved player: the follow-up non-melee
	// hit names the logging player and the crit attaches to it.
	p := newTestParser("",
		logLine(0, "You deliver a critical blast!"),
		logLine(0, "Tarim hit a rat for 100 points of non-melee damage."),
		logLine(2, "You have slain a rat!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
	player := enc.Player()
	if player.Name != "Tarim" {
		t.Errorf("player name = %q, want %q", player.Name, "Tarim")
	}
	if _, ok := enc.Entities["tarim"]; ok {
		t.Error("provisional tarim entity survived discovery")
	}
	sp := player.Outgoing.Spell["arat"]["non-melee"]
	if sp == nil || sp.Hits != 1 || sp.Crits != 1 || sp.Total != 100 {
		t.Errorf("spell = %+v, want 1 hit, 1 crit, total 100", sp)
	}
}

func TestParse_Misses(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You try to crush a rat, but a rat dodges!"),
		logLine(1, "a rat tries to bite YOU, but YOU are INVULNERABLE!"),
		logLine(2, "You try to crush a rat, but miss!"),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	crush := enc.Player().Outgoing.Melee["arat"]["crush"]
	if crush == nil {
		t.Fatal("player crush accumulator missing")
	}
	if crush.Hits != 0 {
		t.Errorf("hits = %d, want 0", crush.Hits)
	}
	if crush.Misses["dodge"] != 1 || crush.Misses["miss"] != 1 {
		t.Errorf("misses = %+v, want dodge:1 miss:1", crush.Misses)
	}
	bite := enc.Entities["arat"].Outgoing.Melee[encounter.PlayerID]["bite"]
	if bite == nil || bite.Misses["immune"] != 1 {
		t.Errorf("rat bite misses = %+v, want immune:1", bite)
	}
}

func TestParse_HealsResistsAndPet(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You have healed a guard for 50 points."),
		logLine(1, "You have been healed for 30 points."),
		logLine(2, "Your target resisted the Ignite spell."),
		logLine(3, "Jobober says 'My leader is Tarim.'"),
		logLine(4, "Jobober bites a rat for 4 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}

	player := enc.Player()
	if h := player.Outgoing.Healing["aguard"]["heal"]; h == nil || h.Total != 50 {
		t.Errorf("heal delivered = %+v, want total 50", h)
	}
	if h := player.Incoming.Healing[encounter.UnknownID]["heal"]; h == nil || h.Total != 30 {
		t.Errorf("heal received = %+v, want total 30", h)
	}
	if s := player.Outgoing.Spell[encounter.UnknownID]["Ignite"]; s == nil || s.Misses["resist"] != 1 {
		t.Errorf("resist = %+v, want resist:1", s)
	}

	pet := enc.Entities["jobober"]
	if pet == nil {
		t.Fatal("pet entity missing")
	}
	if !pet.IsPlayerPet() {
		t.Errorf("pet owner = %q, want %q", pet.Owner, encounter.PlayerID)
	}
	// A player pet's target is an enemy, same as the player's.
	rat := enc.Entities["arat"]
	if rat == nil || !rat.IsEnemy.True() {
		t.Error("pet target not inferred as enemy")
	}
	if pet.IsEnemy.True() {
		t.Error("pet wrongly flagged enemy")
	}
}

func TestParse_SpamLinesIgnored(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(1, "Soandso tells you, 'a rat bites YOU for 999 points of damage.'"),
		logLine(1, "You gain experience!!"),
		logLine(2, "You crush a rat for 12 points of damage."),
	)

	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	enc := p.Flush()
	if enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
	if rat := enc.Entities["arat"]; rat != nil {
		if bite := rat.Outgoing.Melee[encounter.PlayerID]["bite"]; bite != nil {
			t.Errorf("chat-quoted damage leaked into stats: %+v", bite)
		}
	}
	crush := enc.Player().Outgoing.Melee["arat"]["crush"]
	if crush == nil || crush.Hits != 2 || crush.Total != 22 {
		t.Errorf("crush = %+v, want 2 hits total 22", crush)
	}
}

func TestParse_FollowMode(t *testing.T) {
	p := newTestParser("Tarim")

	p.Append(
		logLine(0, "a rat bites YOU for 10 points of damage."),
	)
	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil (encounter still open)", got)
	}

	// Lines appended after an exhausted buffer resume the same parse.
	p.Append(
		logLine(2, "You have been slain by a rat!"),
	)
	enc := p.ParseNext()
	if enc == nil {
		t.Fatal("ParseNext() = nil after append, want encounter")
	}
	if !enc.IsFailed {
		t.Error("IsFailed = false, want true")
	}
	if p.Cursor() != p.Total() {
		t.Errorf("cursor = %d, total = %d, want equal", p.Cursor(), p.Total())
	}
}

func TestParse_ReadFrom(t *testing.T) {
	input := strings.Join([]string{
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(2, "You have slain a rat!"),
	}, "\n") + "\n"

	p := New(Config{PlayerName: "Tarim"})
	if err := p.ReadFrom(strings.NewReader(input)); err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if got := p.Total(); got != 2 {
		t.Fatalf("Total() = %d, want 2", got)
	}
	if got := p.ParseNext(); got != nil {
		t.Fatalf("ParseNext() = %+v, want nil", got)
	}
	if enc := p.Flush(); enc == nil {
		t.Fatal("Flush() = nil, want encounter")
	}
}

func TestParse_Span(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(5, "You have slain a rat!"),
	)
	for p.ParseNext() != nil {
	}
	p.Flush()

	start, end := p.Span()
	wantStart := baseTime.UnixMilli()
	wantEnd := baseTime.Add(5 * time.Second).UnixMilli()
	if start != wantStart || end != wantEnd {
		t.Errorf("Span() = (%d, %d), want (%d, %d)", start, end, wantStart, wantEnd)
	}
}

func TestNameToID(t *testing.T) {
	p := New(Config{PlayerName: "Tarim"})

	tests := []struct {
		raw         string
		wantID      string
		wantDisplay string
	}{
		{"YOU", encounter.PlayerID, "Tarim"},
		{"Tarim", encounter.PlayerID, "Tarim"},
		{"tarim", encounter.PlayerID, "Tarim"},
		{"A rat", "arat", "a rat"},
		{"a rat", "arat", "a rat"},
		{"An iksar bandit", "aniksarbandit", "an iksar bandit"},
		{"a rat`s corpse", "arat", "a rat"},
		{"Froglok ton knight", "frogloktonknight", "Froglok ton knight"},
		{"unknown", encounter.UnknownID, encounter.UnknownName},
	}
	for _, tt := range tests {
		id, display := p.nameToID(tt.raw)
		if id != tt.wantID || display != tt.wantDisplay {
			t.Errorf("nameToID(%q) = (%q, %q), want (%q, %q)",
				tt.raw, id, display, tt.wantID, tt.wantDisplay)
		}
		// Idempotence: feeding the display name back yields the same id.
		id2, _ := p.nameToID(display)
		if id2 != id {
			t.Errorf("nameToID(%q) not idempotent: %q then %q", tt.raw, id, id2)
		}
	}
}

func TestAssociatePlayer_FirstCallWins(t *testing.T) {
	p := New(Config{})
	p.associatePlayer("Tarim")
	p.associatePlayer("Soandso")
	if got := p.PlayerName(); got != "Tarim" {
		t.Errorf("PlayerName() = %q, want Tarim", got)
	}
}

func TestLookBack_StopsAtOlderTimestamp(t *testing.T) {
	p := newTestParser("Tarim",
		logLine(0, "You crush a rat for 10 points of damage."),
		logLine(2, "You crush a rat for 11 points of damage."),
		logLine(2, "You crush a rat for 12 points of damage."),
	)
	p.cursor = 2

	got := p.lookBack(baseTime.Add(2 * time.Second).UnixMilli())
	if len(got) != 1 {
		t.Fatalf("lookBack() returned %d lines, want 1", len(got))
	}
	if got[0] != p.lines[1] {
		t.Errorf("lookBack()[0] = %q, want line 1", got[0])
	}
}

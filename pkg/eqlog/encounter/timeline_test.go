package encounter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eqlog/eqlog-go/pkg/eqlog/encounter"
)

func dmgKey(source, target string) encounter.Key {
	return encounter.Key{Source: source, Target: target, Kind: encounter.KindDamage, Name: "crush"}
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{499, 0},
		{500, 1},
		{1000, 1},
		{1499, 1},
		{1500, 2},
		{1734567890123, 1734567890},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, encounter.BucketOf(tt.ms), "BucketOf(%d)", tt.ms)
	}
}

func TestTimeline_RecordAccumulates(t *testing.T) {
	tl := encounter.NewTimeline()
	k := dmgKey("player", "arat")

	// 1000ms and 1499ms share bucket 1.
	tl.Record(1000, k, 10)
	tl.Record(1499, k, 15)

	require.Len(t, tl.Buckets, 1)
	assert.Equal(t, int64(25), tl.Buckets[1][k])
}

func TestTimeline_Span(t *testing.T) {
	tl := encounter.NewTimeline()
	_, _, ok := tl.Span()
	assert.False(t, ok, "empty timeline has no span")
	assert.True(t, tl.Empty())

	tl.Record(5_000, dmgKey("a", "b"), 1)
	tl.Record(9_000, dmgKey("a", "b"), 1)
	first, last, ok := tl.Span()
	require.True(t, ok)
	assert.Equal(t, int64(5), first)
	assert.Equal(t, int64(9), last)
}

func TestTimeline_RenameID(t *testing.T) {
	tl := encounter.NewTimeline()
	tl.Record(1_000, dmgKey("tarim", "arat"), 5)
	tl.Record(1_000, dmgKey("player", "arat"), 3)
	tl.Record(2_000, dmgKey("arat", "tarim"), 7)

	tl.RenameID("tarim", "player")

	assert.Equal(t, int64(8), tl.Buckets[1][dmgKey("player", "arat")],
		"colliding rewrites merge amounts")
	assert.Equal(t, int64(7), tl.Buckets[2][dmgKey("arat", "player")])
	_, old := tl.Buckets[1][dmgKey("tarim", "arat")]
	assert.False(t, old)
}

func TestTimeline_ToDPSData_Empty(t *testing.T) {
	tl := encounter.NewTimeline()
	series, err := tl.ToDPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestTimeline_ToDPSData_SingleBucket(t *testing.T) {
	tl := encounter.NewTimeline()
	tl.Record(1_000_000, dmgKey("player", "arat"), 42)

	series, err := tl.ToDPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, encounter.SeriesPoint{Second: 1000, Rate: 42}, series[0])
}

func TestTimeline_ToDPSData_ConstantStaysConstant(t *testing.T) {
	tl := encounter.NewTimeline()
	for s := int64(1000); s < 1010; s++ {
		tl.Record(s*1000, dmgKey("player", "arat"), 10)
	}

	series, err := tl.ToDPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, series, 10)
	for _, pt := range series {
		assert.Equal(t, int64(10), pt.Rate, "second %d", pt.Second)
	}
}

func TestTimeline_ToDPSData_Smoothing(t *testing.T) {
	tl := encounter.NewTimeline()
	k := dmgKey("player", "arat")
	// Raw per-second totals: [8, 4, 0, 0, 16] over seconds 1000..1004.
	tl.Record(1_000_000, k, 8)
	tl.Record(1_001_000, k, 4)
	tl.Record(1_004_000, k, 16)

	series, err := tl.ToDPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, series, 5)

	want := []int64{3, 2, 9, 9, 8}
	for i, pt := range series {
		assert.Equal(t, int64(1000+i), pt.Second)
		assert.Equal(t, want[i], pt.Rate, "second %d", pt.Second)
	}
}

func TestTimeline_ToDPSData_Filters(t *testing.T) {
	tl := encounter.NewTimeline()
	tl.Record(1_000_000, dmgKey("player", "arat"), 10)
	tl.Record(1_000_000, dmgKey("jobober", "arat"), 4)
	tl.Record(1_000_000, encounter.Key{
		Source: "player", Target: "arat", Kind: encounter.KindDamage, Name: "non-melee",
	}, 100)
	tl.Record(1_000_000, encounter.Key{
		Source: "player", Target: "player", Kind: encounter.KindHeal, Name: "heal",
	}, 30)

	all, err := tl.ToDPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(114), all[0].Rate, "heals never count toward DPS")

	bySource, err := tl.ToDPSData(encounter.SeriesFilter{Sources: []string{"jobober"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), bySource[0].Rate)

	byName, err := tl.ToDPSData(encounter.SeriesFilter{Name: "crush"})
	require.NoError(t, err)
	assert.Equal(t, int64(14), byName[0].Rate)

	heals, err := tl.ToHPSData(encounter.SeriesFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(30), heals[0].Rate)
}

func TestTimeline_ToDPSData_BoundsOnlyNarrow(t *testing.T) {
	tl := encounter.NewTimeline()
	k := dmgKey("player", "arat")
	tl.Record(1_000_000, k, 10)
	tl.Record(1_004_000, k, 10)

	// Bounds wider than the timeline's own extent are ignored.
	start := int64(900_000)
	end := int64(2_000_000)
	series, err := tl.ToDPSData(encounter.SeriesFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, series, 5)

	// Narrowing bounds clip the series.
	start = 1_001_000
	end = 1_003_000
	series, err = tl.ToDPSData(encounter.SeriesFilter{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, int64(1001), series[0].Second)
	assert.Equal(t, int64(1003), series[2].Second)
}

func TestTimeline_ToDPSData_RangeError(t *testing.T) {
	tl := encounter.NewTimeline()
	k := dmgKey("player", "arat")
	tl.Record(1_000_000, k, 10)
	tl.Record(1_004_000, k, 10)

	start := int64(1_003_000)
	end := int64(1_001_000)
	_, err := tl.ToDPSData(encounter.SeriesFilter{Start: &start, End: &end})
	var rangeErr *encounter.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, int64(1003), rangeErr.Start)
	assert.Equal(t, int64(1001), rangeErr.End)
}

func TestKey_TextRoundTrip(t *testing.T) {
	k := dmgKey("player", "arat")
	data, err := k.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "player|arat|damage|crush", string(data))

	var got encounter.Key
	require.NoError(t, got.UnmarshalText(data))
	assert.Equal(t, k, got)

	assert.Error(t, got.UnmarshalText([]byte("only|three|fields")))
}

func TestTimeline_JSONMapKeys(t *testing.T) {
	tl := encounter.NewTimeline()
	tl.Record(1_000_000, dmgKey("player", "arat"), 10)

	data, err := json.Marshal(tl)
	require.NoError(t, err)

	var got encounter.Timeline
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, int64(10), got.Buckets[1000][dmgKey("player", "arat")])
}

package encounter

import (
	"fmt"
	"math"
	"strings"
)

// EventKind distinguishes damage from healing in the timeline.
type EventKind string

const (
	// KindDamage marks a damage amount.
	KindDamage EventKind = "damage"

	// KindHeal marks a healing amount.
	KindHeal EventKind = "heal"
)

// Key identifies one accumulating timeline series within a bucket.
type Key struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Kind   EventKind `json:"kind"`
	Name   string    `json:"name"`
}

// keySep separates Key fields in the text encoding. Entity ids are
// case-folded with whitespace stripped and never contain it.
const keySep = "|"

// MarshalText encodes the key for use as a JSON map key.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(strings.Join([]string{k.Source, k.Target, string(k.Kind), k.Name}, keySep)), nil
}

// UnmarshalText decodes a key produced by MarshalText.
func (k *Key) UnmarshalText(data []byte) error {
	parts := strings.SplitN(string(data), keySep, 4)
	if len(parts) != 4 {
		return fmt.Errorf("timeline key %q: want 4 fields", string(data))
	}
	k.Source, k.Target, k.Kind, k.Name = parts[0], parts[1], EventKind(parts[2]), parts[3]
	return nil
}

// Timeline is a second-granularity bucketed store of damage and healing
// amounts. Bucket indices are event timestamps rounded to the nearest second;
// identical keys in the same bucket accumulate rather than duplicate.
type Timeline struct {
	Buckets map[int64]map[Key]int64 `json:"buckets,omitempty"`
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// BucketOf converts an epoch-millisecond timestamp to its bucket index.
func BucketOf(tsMillis int64) int64 {
	return int64(math.Round(float64(tsMillis) / 1000.0))
}

// Record adds an amount under the given key, merging with any amount already
// recorded for the same key in the same second.
func (t *Timeline) Record(tsMillis int64, k Key, amount int64) {
	if t.Buckets == nil {
		t.Buckets = make(map[int64]map[Key]int64)
	}
	bucket := BucketOf(tsMillis)
	entries := t.Buckets[bucket]
	if entries == nil {
		entries = make(map[Key]int64)
		t.Buckets[bucket] = entries
	}
	entries[k] += amount
}

// Empty reports whether the timeline holds no buckets.
func (t *Timeline) Empty() bool { return len(t.Buckets) == 0 }

// Span returns the first and last bucket indices. ok is false for an empty
// timeline.
func (t *Timeline) Span() (first, last int64, ok bool) {
	if t.Empty() {
		return 0, 0, false
	}
	started := false
	for bucket := range t.Buckets {
		if !started {
			first, last = bucket, bucket
			started = true
			continue
		}
		if bucket < first {
			first = bucket
		}
		if bucket > last {
			last = bucket
		}
	}
	return first, last, true
}

// RenameID rewrites the source and target ids of every entry matching oldID
// to newID, merging amounts where the rewrite collides with an existing key.
// Used by late player-identity resolution.
func (t *Timeline) RenameID(oldID, newID string) {
	if oldID == newID {
		return
	}
	for _, entries := range t.Buckets {
		for k, amount := range entries {
			nk := k
			if nk.Source == oldID {
				nk.Source = newID
			}
			if nk.Target == oldID {
				nk.Target = newID
			}
			if nk != k {
				delete(entries, k)
				entries[nk] += amount
			}
		}
	}
}

// RangeError reports an inverted time range passed to a series query.
// This is a usage error, not a data-quality issue, and is never swallowed.
type RangeError struct {
	Start, End int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("timeline range inverted: start bucket %d > end bucket %d", e.Start, e.End)
}

// SeriesFilter narrows a DPS/HPS query. Zero values match everything.
type SeriesFilter struct {
	// Start and End bound the query in epoch milliseconds. A bound is only
	// applied if it narrows the timeline's own extent.
	Start, End *int64

	// Sources and Targets restrict entries to the given entity ids.
	Sources, Targets []string

	// Name restricts entries to one damage/heal sub-key.
	Name string
}

func (f SeriesFilter) matches(k Key) bool {
	if len(f.Sources) > 0 && !contains(f.Sources, k.Source) {
		return false
	}
	if len(f.Targets) > 0 && !contains(f.Targets, k.Target) {
		return false
	}
	if f.Name != "" && f.Name != k.Name {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SeriesPoint is one per-second sample of a rate series.
type SeriesPoint struct {
	Second int64 `json:"second"`
	Rate   int64 `json:"rate"`
}

// ToDPSData derives a smoothed damage-per-second series over the filtered
// timeline. An empty timeline yields an empty series. Returns a *RangeError
// if the resolved range is inverted.
func (t *Timeline) ToDPSData(f SeriesFilter) ([]SeriesPoint, error) {
	return t.toSeries(KindDamage, f)
}

// ToHPSData derives a smoothed healing-per-second series over the filtered
// timeline.
func (t *Timeline) ToHPSData(f SeriesFilter) ([]SeriesPoint, error) {
	return t.toSeries(KindHeal, f)
}

func (t *Timeline) toSeries(kind EventKind, f SeriesFilter) ([]SeriesPoint, error) {
	first, last, ok := t.Span()
	if !ok {
		return nil, nil
	}

	// A requested bound is used only when it narrows the timeline's extent.
	start, end := first, last
	if f.Start != nil {
		if s := BucketOf(*f.Start); s > start {
			start = s
		}
	}
	if f.End != nil {
		if e := BucketOf(*f.End); e < end {
			end = e
		}
	}
	if start > end {
		return nil, &RangeError{Start: start, End: end}
	}

	raw := make([]int64, end-start+1)
	for i := range raw {
		entries := t.Buckets[start+int64(i)]
		for k, amount := range entries {
			if k.Kind != kind {
				continue
			}
			if f.matches(k) {
				raw[i] += amount
			}
		}
	}

	// Smoothing: a chained pairwise average over a clamped 2-before/2-after
	// window, not a true windowed mean. The recurrence is load-bearing:
	// consumers were built against these exact values.
	out := make([]SeriesPoint, len(raw))
	for i := range raw {
		lo := i - 2
		if lo < 0 {
			lo = 0
		}
		hi := i + 2
		if hi > len(raw)-1 {
			hi = len(raw) - 1
		}
		acc := raw[lo]
		for j := lo + 1; j <= hi; j++ {
			acc = int64(math.Round(float64(acc+raw[j]) / 2.0))
		}
		out[i] = SeriesPoint{Second: start + int64(i), Rate: acc}
	}
	return out, nil
}

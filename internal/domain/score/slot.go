package score

import "github.com/okian/ddrsync/internal/domain/song"

// Slot is the best known result on one chart. The zero value is an empty slot.
type Slot struct {
	Score uint32
	Lamp  Lamp
	// PlayedAt is unix seconds; 0 means unknown.
	PlayedAt int64
	Played   bool
}

// Empty reports whether s holds no observation.
func (s Slot) Empty() bool { return !s.Played }

// Merge combines two observations of the same chart. Each field takes the
// maximum independently, so the result may pair a score with a lamp from
// another play. Merge is commutative, associative and idempotent.
func Merge(a, b Slot) Slot {
	switch {
	case !a.Played && !b.Played:
		return Slot{}
	case !a.Played:
		return b
	case !b.Played:
		return a
	}
	return Slot{
		Score:    max(a.Score, b.Score),
		Lamp:     max(a.Lamp, b.Lamp),
		PlayedAt: max(a.PlayedAt, b.PlayedAt),
		Played:   true,
	}
}

// Table holds one slot per chart, indexed by song.Chart.
type Table [song.ChartCount]Slot

// Merge merges other into t chart by chart and returns the number of slots that changed.
func (t *Table) Merge(other Table) int {
	changed := 0
	for i := range t {
		merged := Merge(t[i], other[i])
		if merged != t[i] {
			t[i] = merged
			changed++
		}
	}
	return changed
}

// Observe merges a single observation into the chart slot and reports whether it changed.
func (t *Table) Observe(c song.Chart, s Slot) bool {
	if !c.Valid() {
		return false
	}
	merged := Merge(t[c], s)
	if merged == t[c] {
		return false
	}
	t[c] = merged
	return true
}

// Get returns the slot for a chart.
func (t *Table) Get(c song.Chart) Slot {
	if !c.Valid() {
		return Slot{}
	}
	return t[c]
}

// Played returns the number of non-empty slots.
func (t *Table) Played() int {
	n := 0
	for i := range t {
		if t[i].Played {
			n++
		}
	}
	return n
}

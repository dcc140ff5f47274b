// Package search finds songs in a catalog by title or local id and filters
// them by chart availability.
package search

import "github.com/okian/ddrsync/internal/domain/song"

// FilterKind tags a FilterSpec.
type FilterKind uint8

// Filter kinds.
const (
	FilterBySingleLevel FilterKind = iota + 1
	FilterHasChallenge
	FilterHasNonChallenge
)

// FilterSpec is one song predicate. Build it with BySingleLevel, HasChallenge
// or HasNonChallenge.
type FilterSpec struct {
	Kind  FilterKind
	Level uint8
}

// BySingleLevel keeps songs with a single chart of the given level.
func BySingleLevel(level uint8) FilterSpec {
	return FilterSpec{Kind: FilterBySingleLevel, Level: level}
}

// HasChallenge keeps songs with a challenge single chart.
func HasChallenge() FilterSpec { return FilterSpec{Kind: FilterHasChallenge} }

// HasNonChallenge keeps songs with charts besides the challenge chart.
func HasNonChallenge() FilterSpec { return FilterSpec{Kind: FilterHasNonChallenge} }

// ForChart returns the availability filter for a requested chart:
// challenge charts need HasChallenge, the rest need HasNonChallenge.
func ForChart(c song.Chart) FilterSpec {
	if c.IsChallenge() {
		return HasChallenge()
	}
	return HasNonChallenge()
}

// Matches reports whether s satisfies f. An unknown kind matches nothing.
func (f FilterSpec) Matches(s song.Song) bool {
	switch f.Kind {
	case FilterBySingleLevel:
		return s.Ratings.ContainsSingle(f.Level)
	case FilterHasChallenge:
		return s.Ratings.HasChallenge()
	case FilterHasNonChallenge:
		return s.Ratings.HasNonChallenge()
	default:
		return false
	}
}

// Filter returns the songs satisfying every spec, in input order.
func Filter(songs []song.Song, specs ...FilterSpec) []song.Song {
	out := make([]song.Song, 0, len(songs))
next:
	for _, s := range songs {
		for _, f := range specs {
			if !f.Matches(s) {
				continue next
			}
		}
		out = append(out, s)
	}
	return out
}

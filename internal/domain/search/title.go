package search

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/okian/ddrsync/internal/domain/song"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity accepted by the fuzzy fallback.
const DefaultThreshold = 0.85

// Method tells which rule produced a title match.
type Method uint8

// Match methods, in the order they are tried.
const (
	MethodExact Method = iota + 1
	MethodWords
	MethodFuzzy
)

func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodWords:
		return "words"
	case MethodFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the result of a title lookup.
type Match struct {
	Song       song.Song
	Method     Method
	Similarity float64
}

// Option configures a title lookup.
type Option func(*options)

type options struct {
	threshold float64
}

// WithThreshold sets the fuzzy similarity threshold. Values outside (0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(o *options) {
		if t > 0 && t <= 1 {
			o.threshold = t
		}
	}
}

// ByTitle finds the song best matching query. See Lookup.
func ByTitle(songs []song.Song, query string, opts ...Option) (song.Song, bool) {
	m, ok := Lookup(songs, query, opts...)
	return m.Song, ok
}

// Lookup matches query against the songs' search names, case-insensitively:
//  1. a song whose last search name equals the query is returned at once;
//  2. otherwise the first song with a search name containing every query word;
//  3. otherwise the most similar search name by Jaro-Winkler, if it reaches the threshold.
//
// An empty query matches nothing.
func Lookup(songs []song.Song, query string, opts ...Option) (Match, bool) {
	o := options{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return Match{}, false
	}
	words := strings.Fields(query)

	var candidate *song.Song
	for i := range songs {
		s := &songs[i]
		if n := len(s.SearchNames); n > 0 && s.SearchNames[n-1] == query {
			return Match{Song: *s, Method: MethodExact, Similarity: 1}, true
		}
		if candidate == nil && containsAllWords(s.SearchNames, words) {
			candidate = s
		}
	}
	if candidate != nil {
		return Match{Song: *candidate, Method: MethodWords}, true
	}

	jw := metrics.NewJaroWinkler()
	best, bestScore := -1, 0.0
	for i := range songs {
		for _, name := range songs[i].SearchNames {
			if sim := strutil.Similarity(query, name, jw); sim > bestScore && sim >= o.threshold {
				best, bestScore = i, sim
			}
		}
	}
	if best < 0 {
		return Match{}, false
	}
	return Match{Song: songs[best], Method: MethodFuzzy, Similarity: bestScore}, true
}

func containsAllWords(names, words []string) bool {
	for _, name := range names {
		all := true
		for _, w := range words {
			if !strings.Contains(name, w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// ByLocalID returns the song linked to the given secondary local id.
func ByLocalID(songs []song.Song, id song.LocalID) (song.Song, bool) {
	for _, s := range songs {
		if s.Linked && s.LocalID == id {
			return s, true
		}
	}
	return song.Song{}, false
}

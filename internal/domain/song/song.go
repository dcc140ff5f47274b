// Package song holds the canonical song catalog and the reconciler that
// builds it from the primary and secondary sources.
package song

import "strings"

// Song is one canonical catalog entry. Songs are immutable once a Catalog is
// built; SearchNames and Locks are shared between copies and must not be modified.
type Song struct {
	ID            ID
	Name          string
	RomanizedName string
	// SearchNames are lower-cased name variants. The last entry is the most
	// specific alias and is used for exact lookups.
	SearchNames []string
	LocalID     LocalID
	Linked      bool
	Version     int
	Deleted     bool
	Ratings     Ratings
	Locks       *Locks
}

// PrimaryRecord is one song as reported by the primary source.
type PrimaryRecord struct {
	ID             ID
	Name           string
	AlternateName  string
	RomanizedName  string
	SearchableName string
	Version        int
	Deleted        bool
	Ratings        Ratings
	Locks          *Locks
}

// SecondaryRecord is one song as reported by the secondary source.
// Newer secondary lists carry the primary id in SharedID.
type SecondaryRecord struct {
	LocalID     LocalID
	Name        string
	Artist      string
	SharedID    ID
	HasSharedID bool
	Ratings     Ratings
}

// newSong builds a canonical song from a primary record and an optional link.
func newSong(rec PrimaryRecord, local LocalID, linked bool) Song {
	return Song{
		ID:            rec.ID,
		Name:          rec.Name,
		RomanizedName: rec.RomanizedName,
		SearchNames:   searchNames(rec),
		LocalID:       local,
		Linked:        linked,
		Version:       rec.Version,
		Deleted:       rec.Deleted,
		Ratings:       rec.Ratings,
		Locks:         rec.Locks,
	}
}

// searchNames collects the display name, the romanized name and the
// '/'-separated alternate and searchable names. The display name is not
// split because titles such as "I/O" contain a slash.
func searchNames(rec PrimaryRecord) []string {
	names := make([]string, 0, 4)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			names = append(names, strings.ToLower(s))
		}
	}
	add(rec.Name)
	add(rec.RomanizedName)
	for _, s := range strings.Split(rec.AlternateName, "/") {
		add(s)
	}
	for _, s := range strings.Split(rec.SearchableName, "/") {
		add(s)
	}
	return names
}

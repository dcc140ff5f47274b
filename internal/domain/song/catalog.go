package song

import (
	"slices"
	"strings"
)

// Catalog is an immutable, ordered set of canonical songs. Songs are sorted
// by display name, then id. A refresh replaces the whole Catalog.
//
// A nil *Catalog behaves as an empty catalog.
type Catalog struct {
	songs   []Song
	byID    map[ID]int
	byLocal map[LocalID]ID
	linked  int
}

// NewCatalog builds a Catalog from songs. The input slice is not retained.
// Songs repeating an earlier id are dropped.
func NewCatalog(songs []Song) *Catalog {
	seen := make(map[ID]struct{}, len(songs))
	sorted := make([]Song, 0, len(songs))
	for _, s := range songs {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		sorted = append(sorted, s)
	}
	slices.SortStableFunc(sorted, func(a, b Song) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})

	c := &Catalog{
		songs:   sorted,
		byID:    make(map[ID]int, len(sorted)),
		byLocal: make(map[LocalID]ID),
	}
	for i, s := range sorted {
		c.byID[s.ID] = i
		if s.Linked {
			c.byLocal[s.LocalID] = s.ID
			c.linked++
		}
	}
	return c
}

// Songs returns a copy of the ordered song list.
func (c *Catalog) Songs() []Song {
	if c == nil {
		return nil
	}
	return slices.Clone(c.songs)
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.songs)
}

// Lookup returns the song with the given id.
func (c *Catalog) Lookup(id ID) (Song, bool) {
	if c == nil {
		return Song{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Song{}, false
	}
	return c.songs[i], true
}

// Resolve maps a secondary local id to its canonical id.
func (c *Catalog) Resolve(local LocalID) (ID, bool) {
	if c == nil {
		return ID{}, false
	}
	id, ok := c.byLocal[local]
	return id, ok
}

// Linked returns the number of songs linked to a secondary local id.
func (c *Catalog) Linked() int {
	if c == nil {
		return 0
	}
	return c.linked
}

// NewSince counts the songs present in c and absent from prev.
func (c *Catalog) NewSince(prev *Catalog) int {
	if c == nil {
		return 0
	}
	if prev == nil {
		return len(c.byID)
	}
	n := 0
	for id := range c.byID {
		if _, ok := prev.byID[id]; !ok {
			n++
		}
	}
	return n
}

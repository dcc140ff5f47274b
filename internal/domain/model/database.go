package model

import "github.com/okian/ddrsync/internal/domain/song"

// Database is the pipeline's snapshot: the reconciled catalog and the roster.
// It is mutated only by the goroutine driving a run.
type Database struct {
	Catalog *song.Catalog
	Players []*Player
}

// NewDatabase creates an empty database with the given roster.
func NewDatabase(seeds ...PlayerSeed) *Database {
	db := &Database{}
	db.AddPlayers(seeds...)
	return db
}

// Player returns the player with the given name, or nil.
func (db *Database) Player(name string) *Player {
	for _, p := range db.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddPlayers appends seeds whose name is not yet present and returns how many were added.
// Existing players keep their scores and accounts.
func (db *Database) AddPlayers(seeds ...PlayerSeed) int {
	added := 0
	for _, seed := range seeds {
		if db.Player(seed.Name) != nil {
			continue
		}
		db.Players = append(db.Players, NewPlayer(seed))
		added++
	}
	return added
}

// ReplaceCatalog swaps in a new catalog and returns the previous one.
func (db *Database) ReplaceCatalog(c *song.Catalog) *song.Catalog {
	prev := db.Catalog
	db.Catalog = c
	return prev
}

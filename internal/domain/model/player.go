// Package model contains the domain models owned by the update pipeline.
package model

import (
	"slices"

	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

// PlayerSeed is a roster entry. An empty account disables that source for the player.
type PlayerSeed struct {
	Name             string
	PrimaryAccount   string
	SecondaryAccount string
}

// Player holds the best known score tables of one player, keyed by canonical song id.
// Scores only grow: tables are added and slots improve, nothing is removed.
type Player struct {
	Name             string
	PrimaryAccount   string
	SecondaryAccount string
	Scores           map[song.ID]*score.Table
}

// NewPlayer creates a player with no scores.
func NewPlayer(seed PlayerSeed) *Player {
	return &Player{
		Name:             seed.Name,
		PrimaryAccount:   seed.PrimaryAccount,
		SecondaryAccount: seed.SecondaryAccount,
		Scores:           make(map[song.ID]*score.Table),
	}
}

// MergeTables merges tables into the player and returns the number of slots that changed.
func (p *Player) MergeTables(tables map[song.ID]score.Table) int {
	if p.Scores == nil {
		p.Scores = make(map[song.ID]*score.Table, len(tables))
	}
	changed := 0
	for id, tbl := range tables {
		cur, ok := p.Scores[id]
		if !ok {
			cur = &score.Table{}
			p.Scores[id] = cur
		}
		changed += cur.Merge(tbl)
	}
	return changed
}

// Table returns a copy of the player's table for a song.
func (p *Player) Table(id song.ID) (score.Table, bool) {
	tbl, ok := p.Scores[id]
	if !ok {
		return score.Table{}, false
	}
	return *tbl, true
}

// SongIDs returns the ids of all songs with a table, in id order.
func (p *Player) SongIDs() []song.ID {
	ids := make([]song.ID, 0, len(p.Scores))
	for id := range p.Scores {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, song.ID.Compare)
	return ids
}

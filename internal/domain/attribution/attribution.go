// Package attribution re-keys secondary score tables by canonical song id.
package attribution

import (
	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

// Result is the outcome of attributing one player's secondary scores.
type Result struct {
	Tables map[song.ID]score.Table
	// Dropped counts tables whose local id is not linked in the catalog.
	// These are songs removed long ago or not yet in the primary catalog.
	Dropped int
}

// Attribute maps secondary local ids to canonical ids through cat.
// Unknown local ids are dropped and counted; they are never an error.
func Attribute(scores map[song.LocalID]score.Table, cat *song.Catalog) Result {
	res := Result{Tables: make(map[song.ID]score.Table, len(scores))}
	for local, tbl := range scores {
		id, ok := cat.Resolve(local)
		if !ok {
			res.Dropped++
			continue
		}
		res.Tables[id] = tbl
	}
	return res
}

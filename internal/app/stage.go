package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/ddrsync/internal/domain/song"
)

// Stage is the progress of one run.
type Stage uint8

// Run stages in order.
const (
	StageIdle Stage = iota
	StageCatalogsInFlight
	StageCatalogReady
	StageDraining
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCatalogsInFlight:
		return "catalogs_in_flight"
	case StageCatalogReady:
		return "catalog_ready"
	case StageDraining:
		return "draining"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Report summarizes one run. Counters depend on the order results arrived in.
type Report struct {
	RunID uuid.UUID
	// Stage is the last stage the run reached.
	Stage Stage
	// NewSongs counts catalog songs that were not in the previous catalog.
	NewSongs int
	// NewScores counts score slots that changed.
	NewScores int
	// FailedPlayers lists players with a failed score fetch, sorted.
	FailedPlayers []string
	// Degraded is set when the secondary catalog failed and the catalog is primary-only.
	Degraded bool
	// Dropped counts secondary tables with no canonical song.
	Dropped   int
	Reconcile song.Report
	Duration  time.Duration
}

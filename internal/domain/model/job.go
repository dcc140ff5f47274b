package model

import (
	"time"

	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

// JobKind identifies a fetch performed by a worker.
type JobKind uint8

// Fetch job kinds.
const (
	JobPrimaryCatalog JobKind = iota + 1
	JobSecondaryCatalog
	JobPrimaryScores
	JobSecondaryScores
)

func (k JobKind) String() string {
	switch k {
	case JobPrimaryCatalog:
		return "primary_catalog"
	case JobSecondaryCatalog:
		return "secondary_catalog"
	case JobPrimaryScores:
		return "primary_scores"
	case JobSecondaryScores:
		return "secondary_scores"
	default:
		return "unknown"
	}
}

// Job is one unit of fetch work. Player and Account are set for score jobs.
type Job struct {
	Kind    JobKind
	Player  string
	Account string
}

// Result is a worker's answer to a Job. Exactly one payload field is set
// when Err is nil. The receiver owns the payload.
type Result struct {
	Job             Job
	Primary         []song.PrimaryRecord
	Secondary       []song.SecondaryRecord
	PrimaryScores   map[song.ID]score.Table
	SecondaryScores map[song.LocalID]score.Table
	Err             error
	Latency         time.Duration
}

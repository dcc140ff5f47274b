// Package sources composes the primary and secondary tracker clients into the
// collaborator set the update service fetches from.
package sources

import (
	"context"
	"errors"

	"github.com/okian/ddrsync/internal/domain/score"
	"github.com/okian/ddrsync/internal/domain/song"
)

// ErrDisabled is returned by calls to a source that was not configured.
var ErrDisabled = errors.New("source disabled")

// Primary is the primary tracker client.
type Primary interface {
	Catalog(ctx context.Context) ([]song.PrimaryRecord, error)
	Scores(ctx context.Context, username string) (map[song.ID]score.Table, error)
}

// Secondary is the secondary tracker client.
type Secondary interface {
	Catalog(ctx context.Context) ([]song.SecondaryRecord, error)
	Scores(ctx context.Context, code string) (map[song.LocalID]score.Table, error)
}

// Sources routes each fetch to the matching client.
type Sources struct {
	primary   Primary
	secondary Secondary
}

// New composes the two clients. A nil secondary disables it: its calls fail
// with ErrDisabled, which the service treats like an unreachable tracker.
func New(p Primary, s Secondary) *Sources {
	return &Sources{primary: p, secondary: s}
}

func (s *Sources) PrimaryCatalog(ctx context.Context) ([]song.PrimaryRecord, error) {
	if s.primary == nil {
		return nil, ErrDisabled
	}
	return s.primary.Catalog(ctx)
}

func (s *Sources) SecondaryCatalog(ctx context.Context) ([]song.SecondaryRecord, error) {
	if s.secondary == nil {
		return nil, ErrDisabled
	}
	return s.secondary.Catalog(ctx)
}

func (s *Sources) PrimaryScores(ctx context.Context, account string) (map[song.ID]score.Table, error) {
	if s.primary == nil {
		return nil, ErrDisabled
	}
	return s.primary.Scores(ctx, account)
}

func (s *Sources) SecondaryScores(ctx context.Context, account string) (map[song.LocalID]score.Table, error) {
	if s.secondary == nil {
		return nil, ErrDisabled
	}
	return s.secondary.Scores(ctx, account)
}

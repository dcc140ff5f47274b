package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ddrsync/internal/domain/search"
	"github.com/okian/ddrsync/internal/domain/song"
	"github.com/okian/ddrsync/pkg/logger"
	"github.com/okian/ddrsync/pkg/metrics"
)

func newSearchCommand(cc *commandContext) *cobra.Command {
	var (
		level       uint8
		challenge   bool
		noChallenge bool
	)

	cmd := &cobra.Command{
		Use:   "search [title]",
		Short: "Find a song in the reconciled catalog",
		Long: "Find the song best matching title, trying an exact alias, then all words, then a fuzzy match.\n" +
			"Without a title every song passing the filters is listed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandCtx(cmd)

			var specs []search.FilterSpec
			if cmd.Flags().Changed("level") {
				specs = append(specs, search.BySingleLevel(level))
			}
			if challenge {
				specs = append(specs, search.HasChallenge())
			}
			if noChallenge {
				specs = append(specs, search.HasNonChallenge())
			}

			// Catalog only: no players, so no score fetches.
			db, _, err := cc.newService().Run(ctx, nil)
			if err != nil {
				return err
			}
			songs := search.Filter(db.Catalog.Songs(), specs...)

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderSongs(songs))
				return nil
			}

			m, ok := search.Lookup(songs, args[0], search.WithThreshold(cc.cfg.SearchFuzzyThreshold))
			if !ok {
				return fmt.Errorf("no song matches %q", args[0])
			}
			if m.Method == search.MethodFuzzy {
				metrics.RecordSearchFuzzyFallback()
				logger.Named("search").Debug(ctx, "fuzzy title match",
					logger.String("query", args[0]),
					logger.String("song", m.Song.Name),
					logger.Float64("similarity", m.Similarity),
				)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSongs([]song.Song{m.Song}))
			fmt.Fprintf(cmd.OutOrStdout(), "matched by %s\n", m.Method)
			fmt.Fprintf(cmd.OutOrStdout(), "bpm %s\n", cc.songBPM(ctx, m.Song.ID))
			return nil
		},
	}

	cmd.Flags().Uint8Var(&level, "level", 0, "Only songs with a single chart of this level")
	cmd.Flags().BoolVar(&challenge, "challenge", false, "Only songs with a challenge chart")
	cmd.Flags().BoolVar(&noChallenge, "no-challenge", false, "Only songs with non-challenge charts")
	cmd.MarkFlagsMutuallyExclusive("challenge", "no-challenge")

	return cmd
}

// songBPM describes a song's tempo. A failed lookup does not fail the search.
func (cc *commandContext) songBPM(ctx context.Context, id song.ID) string {
	bpm, ok, err := cc.newPrimary().SongBPM(ctx, id)
	switch {
	case err != nil:
		logger.Named("search").Warn(ctx, "tempo lookup failed", logger.String("song_id", id.String()), logger.Error(err))
		return "unavailable"
	case !ok:
		return "unknown"
	}
	return bpm.String()
}

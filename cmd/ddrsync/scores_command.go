package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newScoresCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scores <player>",
		Short: "Fetch and print one roster player's merged scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandCtx(cmd)
			name := args[0]

			player, ok := cc.cfg.Player(name)
			if !ok {
				return fmt.Errorf("player %q is not in the roster", name)
			}

			db, rep, err := cc.newService().Run(ctx, seeds(player))
			if err != nil {
				return err
			}
			if slices.Contains(rep.FailedPlayers, name) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: some score fetches for %s failed; showing partial results\n", name)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderScores(db.Player(name), db.Catalog))
			return nil
		},
	}
}

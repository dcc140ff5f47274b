package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch both catalogs and every player's scores",
		Long:  "Fetch both catalogs and every roster player's scores, reconcile them and print a summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, rep, err := cc.newService().Run(commandCtx(cmd), seeds(cc.cfg.Players...))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderReport(rep, db))
			fmt.Fprintln(out, renderPlayers(db.Players))
			return nil
		},
	}
}

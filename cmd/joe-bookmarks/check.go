package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/store"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every link and its owner agree",
		Long: "Scans links and user_links and reports links their creator does not list, " +
			"references to missing links, and references held by someone other than the creator.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, database, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			users, err := store.NewUserStore(database).Count(ctx)
			if err != nil {
				return err
			}
			relation := store.NewRelationshipStore(database, log, store.DefaultTxConfig)
			links, err := relation.CountLinks(ctx)
			if err != nil {
				return err
			}
			violations, err := relation.CheckIntegrity(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Users: %d\nLinks: %d\n", users, links)
			for _, v := range violations {
				fmt.Fprintln(out, " -", v)
			}
			if len(violations) > 0 {
				log.Warn("integrity check failed", zap.Int("violations", len(violations)))
				return fmt.Errorf("%d integrity violations", len(violations))
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}

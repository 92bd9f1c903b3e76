package main

import (
	"context"
	"errors"
	"fmt"

	"girlmath-server/src/db"
	"girlmath-server/src/ledger"
	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/spf13/cobra"
)

func reconcileCmd(flags *storeFlags) *cobra.Command {
	var username string
	var repair bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check a user's cached balance against their transactions",
		Long: `Compare the stored balance with the opening balance minus every recorded
transaction. With --repair, a drifted balance is overwritten with the expected value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := lookupUser(cmd.Context(), store, username)
			if err != nil {
				return err
			}

			rec, err := ledger.NewService(store, nil).Reconcile(cmd.Context(), user.ID, repair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User %s: cached %s, expected %s\n",
				user.Username, util.FormatMoney(rec.Cached), util.FormatMoney(rec.Expected))
			switch {
			case rec.InSync():
				fmt.Fprintln(out, "Balance is in sync")
			case rec.Repaired:
				fmt.Fprintf(out, "Drift of %s repaired\n", util.FormatMoney(rec.Drift()))
			default:
				fmt.Fprintf(out, "Drift of %s found; run with --repair to fix it\n", util.FormatMoney(rec.Drift()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username")
	cmd.Flags().BoolVar(&repair, "repair", false, "overwrite a drifted balance")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func lookupUser(ctx context.Context, store db.Store, username string) (*models.User, error) {
	user, err := store.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("user %s does not exist", username)
	}
	return user, err
}

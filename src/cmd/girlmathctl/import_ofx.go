package main

import (
	"fmt"
	"os"

	"girlmath-server/src/ledger"
	"girlmath-server/src/util"

	"github.com/spf13/cobra"
)

func importOFXCmd(flags *storeFlags) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Record every line of one or more OFX or QFX bank statements as transactions
for a user. Debits become expenses and credits become income. Lines that were
imported before are skipped, so overlapping statements can be imported safely.

Examples:
  girlmathctl import-ofx --user amy ~/Downloads/checking_jan.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, files []string) error {
			store, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := lookupUser(cmd.Context(), store, username)
			if err != nil {
				return err
			}
			svc := ledger.NewService(store, nil)

			out := cmd.OutOrStdout()
			for _, path := range files {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				result, err := svc.ImportOFX(cmd.Context(), user.ID, f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "Imported %d transactions from %s", result.Imported, path)
				if result.Skipped > 0 {
					fmt.Fprintf(out, " (%d already imported)", result.Skipped)
				}
				fmt.Fprintln(out)
			}

			rec, err := svc.Reconcile(cmd.Context(), user.ID, false)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Balance for %s is now %s\n", user.Username, util.FormatMoney(rec.Cached))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

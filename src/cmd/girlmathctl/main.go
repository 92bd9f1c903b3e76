// Command girlmathctl administers a girlmath database: schema migration,
// user creation, balance reconciliation and bank statement import.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"girlmath-server/src/config"
	"girlmath-server/src/db"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

type storeFlags struct {
	driver      string
	databaseURL string
	sqlitePath  string
}

func newRootCmd() *cobra.Command {
	// Environment supplies the defaults; flags override them.
	cfg, cfgErr := config.Parse(os.LookupEnv)
	if cfgErr != nil {
		cfg = config.Config{DBDriver: db.DriverSQLite, SQLitePath: "girlmath.db"}
	}

	flags := &storeFlags{}
	root := &cobra.Command{
		Use:           "girlmathctl",
		Short:         "Administer a girlmath database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", cfg.DBDriver, "database driver (postgres or sqlite)")
	root.PersistentFlags().StringVar(&flags.databaseURL, "database-url", cfg.DatabaseURL, "postgres connection string")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", cfg.SQLitePath, "sqlite database file")

	root.AddCommand(migrateCmd(flags))
	root.AddCommand(addUserCmd(flags))
	root.AddCommand(reconcileCmd(flags))
	root.AddCommand(importOFXCmd(flags))
	return root
}

// open connects to the selected database and migrates it.
func (f *storeFlags) open(ctx context.Context) (db.Store, error) {
	return db.Open(ctx, f.driver, f.databaseURL, f.sqlitePath)
}

func migrateCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database is up to date (%s)\n", flags.driver)
			return nil
		},
	}
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"girlmath-server/src/auth"
	"girlmath-server/src/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func addUserCmd(flags *storeFlags) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		Long: `Create a user account. The password is prompted for when --password is omitted.

Examples:
  girlmathctl adduser --user amy
  girlmathctl adduser --user amy --email amy@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if password == "" {
				fmt.Fprint(out, "Password: ")
				var err error
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(out) // Print newline after password input
			}

			store, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := auth.NewService(store).Register(cmd.Context(), models.RegisterRequest{
				Username: username,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "User %s created successfully with ID %d\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address (optional)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted for if omitted)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Not a terminal: read one line, e.g. from a pipe.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesync/internal/server/auth"
	"github.com/spf13/cobra"
)

// generateToken is a seam for auth.GenerateToken.
var generateToken = auth.GenerateToken

func newTokenCommand() *cobra.Command {
	var (
		secret   string
		clientID string
		validity time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a server secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}
			tok, err := generateToken(clientID, []byte(secret), validity)
			if err != nil {
				return fmt.Errorf("error generating token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "server secret key")
	cmd.Flags().StringVar(&clientID, "client", "cli", "client id stored in the token")
	cmd.Flags().DurationVar(&validity, "validity", time.Hour, "token lifetime")
	return cmd
}

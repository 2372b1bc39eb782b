package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mclc/internal/auth"
	"mclc/internal/config"
)

// statusCmd shows the state of the cached Microsoft session.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show whether a cached Microsoft session exists and which profile
it belongs to. The access token itself is never printed.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	session, err := auth.LoadSession(dir)
	if err != nil {
		if errors.Is(err, auth.ErrAuthNotFound) {
			fmt.Printf("Status:    %s\n", text.FgYellow.Sprint("Not authenticated"))
			fmt.Println("           Run: mclc login")
			return err
		}
		return err
	}

	if !session.Valid() {
		fmt.Printf("Status:    %s\n", text.FgYellow.Sprint("Expired"))
		fmt.Printf("Username:  %s\n", session.Username)
		fmt.Printf("Expired:   %s\n", session.ExpiresAt.Format(time.RFC1123))
		fmt.Println("           Run: mclc login")
		return auth.ErrExpired
	}

	fmt.Printf("Status:    %s\n", text.FgGreen.Sprint("Authenticated"))
	fmt.Printf("Username:  %s\n", session.Username)
	fmt.Printf("UUID:      %s\n", session.UUID)
	fmt.Printf("Token:     %s\n", redactToken(session.AccessToken))
	if !session.ExpiresAt.IsZero() {
		fmt.Printf("Expires:   %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}

// redactToken keeps just enough of the token to recognize it in logs.
func redactToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s... (%d chars)", token[:8], len(token))
}

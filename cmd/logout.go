package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mclc/internal/auth"
	"mclc/internal/config"
)

// logoutCmd drops the cached Microsoft session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the cached Microsoft session",
	Long: `Clear the locally cached Microsoft session. Third-party server
accounts are managed separately via 'mclc accounts remove'.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	if err := auth.ClearSession(dir); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Println("Logged out.")
	return nil
}

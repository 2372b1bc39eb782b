package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mclc/internal/accounts"
	"mclc/internal/auth"
	"mclc/internal/config"
	"mclc/internal/yggdrasil"
)

var (
	accountsAPIURL     string
	accountsIdentifier string
)

// accountsCmd groups operations on stored third-party server accounts.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage stored third-party server accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	RunE:  runAccountsList,
}

var accountsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Validate and refresh an account's token pair",
	Long: `Validate the stored token pair against the server and, if it is no
longer valid, refresh it. Only the token pair is replaced; profile and
identity fields are kept as stored.`,
	RunE: runAccountsRefresh,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a stored account",
	Long: `Remove an account from the store. The token pair is invalidated on
the server first on a best-effort basis.`,
	RunE: runAccountsRemove,
}

func init() {
	for _, c := range []*cobra.Command{accountsRefreshCmd, accountsRemoveCmd} {
		c.Flags().StringVar(&accountsAPIURL, "api-url", "", "Yggdrasil API root the account belongs to")
		c.Flags().StringVar(&accountsIdentifier, "identifier", "", "Account identifier (email or username)")
		c.MarkFlagRequired("api-url")
		c.MarkFlagRequired("identifier")
	}

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsRefreshCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}

func openStore() (*accounts.Store, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return accounts.NewStore(accounts.NewFileStore(dir)), nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	list, err := store.Load()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No accounts stored. Run 'mclc external-login' to add one.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Server", "Identifier", "UUID", "API URL"})
	for _, account := range list {
		t.AppendRow(table.Row{account.Name, account.ServerName, account.Identifier, account.UUID, account.APIURL})
	}
	t.Render()
	return nil
}

func runAccountsRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}

	account, err := store.Find(accountsIdentifier, accountsAPIURL)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("no account for %s at %s: %w", accountsIdentifier, accountsAPIURL, auth.ErrAuthNotFound)
	}

	client := yggdrasil.NewClient(account.APIURL)

	if client.Validate(ctx, account.AccessToken, account.ClientToken) {
		fmt.Printf("%s Token for %s is still valid\n", text.FgGreen.Sprint("✓"), account.DisplayName())
		return nil
	}

	result, err := client.Refresh(ctx, account.AccessToken, account.ClientToken, nil)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", account.DisplayName(), err)
	}

	account.AccessToken = result.AccessToken
	account.ClientToken = result.ClientToken
	if err := store.Upsert(*account); err != nil {
		return fmt.Errorf("failed to store refreshed account: %w", err)
	}

	fmt.Printf("%s Refreshed token for %s\n", text.FgGreen.Sprint("✓"), account.DisplayName())
	return nil
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}

	account, err := store.Find(accountsIdentifier, accountsAPIURL)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("no account for %s at %s", accountsIdentifier, accountsAPIURL)
	}

	client := yggdrasil.NewClient(account.APIURL)
	if !client.Invalidate(ctx, account.AccessToken, account.ClientToken) {
		fmt.Println(text.FgYellow.Sprint("Could not invalidate the token on the server, removing locally anyway."))
	}

	if _, err := store.Remove(accountsIdentifier, accountsAPIURL); err != nil {
		return err
	}

	fmt.Printf("Removed %s.\n", account.DisplayName())
	return nil
}

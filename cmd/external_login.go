package cmd

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mclc/internal/accounts"
	"mclc/internal/config"
	"mclc/internal/yggdrasil"
	"mclc/pkg/logging"
)

var (
	externalLoginAPIURL     string
	externalLoginIdentifier string
)

// externalLoginCmd logs into a Yggdrasil-compatible third-party server.
var externalLoginCmd = &cobra.Command{
	Use:   "external-login",
	Short: "Log in to a Yggdrasil-compatible server",
	Long: `Log in to a third-party authentication server that speaks the
Yggdrasil protocol (an authlib-injector target).

The server address is normalized and probed for an API location redirect
before authenticating. On success the account is stored in accounts.json
and the authlib-injector agent jar is provisioned into the local cache.

Examples:
  mclc external-login --api-url https://example.com/api/yggdrasil
  mclc external-login                      # uses default_api_url from config.yaml`,
	RunE: runExternalLogin,
}

func init() {
	externalLoginCmd.Flags().StringVar(&externalLoginAPIURL, "api-url", "", "Yggdrasil API root or server address")
	externalLoginCmd.Flags().StringVar(&externalLoginIdentifier, "identifier", "", "Account identifier (email or username)")
	rootCmd.AddCommand(externalLoginCmd)
}

func runExternalLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rawURL := externalLoginAPIURL
	if rawURL == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rawURL = cfg.DefaultAPIURL
	}
	if rawURL == "" {
		return fmt.Errorf("no server configured, pass --api-url or set default_api_url in config.yaml")
	}

	apiURL, err := yggdrasil.ResolveAPIURL(ctx, rawURL)
	if err != nil {
		return err
	}

	client := yggdrasil.NewClient(apiURL, yggdrasil.WithProfileSelector(yggdrasil.InteractiveSelector{}))

	serverName := ""
	if meta, err := client.APIMetadata(ctx); err == nil && meta.Meta != nil {
		serverName = meta.Meta.ServerName
	} else if err != nil {
		logging.Debug("ExternalLogin", "metadata fetch failed: %v", err)
	}
	if serverName != "" {
		fmt.Printf("Server: %s (%s)\n", serverName, client.APIURL())
	} else {
		fmt.Printf("Server: %s\n", client.APIURL())
	}

	identifier, password, err := promptCredentials(externalLoginIdentifier)
	if err != nil {
		return err
	}

	result, err := client.Authenticate(ctx, identifier, password)
	if err != nil {
		return err
	}

	account, err := yggdrasil.AccountFromAuth(client.APIURL(), serverName, identifier, result)
	if err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := accounts.NewStore(accounts.NewFileStore(dir))
	if err := store.Upsert(*account); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}

	cacheDir, err := config.CacheDir()
	if err != nil {
		return err
	}
	jarPath, err := yggdrasil.NewProvisioner(cacheDir).GetOrProvision(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s Logged in as %s\n", text.FgGreen.Sprint("✓"), account.DisplayName())
	fmt.Printf("Agent jar: %s\n", jarPath)
	return nil
}

// promptCredentials fills in whichever of identifier and password was not
// provided up front. The password is always prompted, never a flag.
func promptCredentials(identifier string) (string, string, error) {
	rl, err := readline.New("Identifier (email or username): ")
	if err != nil {
		return "", "", fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	if identifier == "" {
		line, err := rl.Readline()
		if err != nil {
			return "", "", fmt.Errorf("failed to read identifier: %w", err)
		}
		identifier = strings.TrimSpace(line)
		if identifier == "" {
			return "", "", fmt.Errorf("identifier must not be empty")
		}
	}

	password, err := rl.ReadPassword("Password: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return identifier, string(password), nil
}

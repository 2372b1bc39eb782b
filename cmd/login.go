package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mclc/internal/auth"
	"mclc/internal/config"
	"mclc/internal/msa"
)

var loginClientID string

// loginCmd represents the Microsoft device-code login command.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a Microsoft account",
	Long: `Log in to a Microsoft account using the device-code flow.

The command prints a verification URL and a short code. Open the URL in
any browser, enter the code, and the command completes the Xbox Live and
Minecraft token chain, caching the resulting session locally.

The Azure application (client) ID comes from --client-id or from the
client_id field of config.yaml.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "Azure application (client) ID for the device-code flow")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clientID := loginClientID
	if clientID == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		clientID = cfg.ClientID
	}
	if clientID == "" {
		return fmt.Errorf("no client ID configured, pass --client-id or set client_id in config.yaml")
	}

	client := msa.NewClient(clientID)

	state, err := client.BeginDeviceCode(ctx)
	if err != nil {
		return err
	}

	if state.Message != "" {
		fmt.Println(state.Message)
	} else {
		fmt.Printf("Open %s and enter the code %s\n", state.VerificationURI, text.Bold.Sprint(state.UserCode))
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Waiting for authorization..."
	s.Start()

	tokens, err := client.PollDeviceCode(ctx, state)
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗") + " Authorization not completed\n"
		s.Stop()
		return err
	}

	s.Suffix = " Completing Minecraft login..."
	session, err := client.CompleteLogin(ctx, tokens)
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗") + " Login failed\n"
		s.Stop()
		return err
	}
	s.Stop()

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := auth.SaveSession(dir, session); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}

	fmt.Printf("%s Logged in as %s (%s)\n", text.FgGreen.Sprint("✓"), session.Username, session.UUID)
	return nil
}

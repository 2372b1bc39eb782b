package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mclc/internal/auth"
	"mclc/pkg/logging"
)

// Exit codes for CLI commands.
// These follow common conventions so scripts can react to auth state.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the login flow failed or was denied.
	ExitCodeAuthFailed = 3
)

var debugFlag bool

// rootCmd represents the base command for the mclc application.
var rootCmd = &cobra.Command{
	Use:   "mclc",
	Short: "Minecraft launcher authentication toolkit",
	Long: `mclc handles launcher-side Minecraft authentication: the Microsoft
device-code login chain for official accounts, and Yggdrasil-compatible
servers (via authlib-injector) for third-party accounts.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if debugFlag {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. The command runs
// under a signal-aware context so long polls abort cleanly on Ctrl-C.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mclc version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if errors.Is(err, auth.ErrAuthNotFound) {
		return ExitCodeAuthRequired
	}

	var denied *auth.DeniedError
	if errors.As(err, &denied) {
		return ExitCodeAuthFailed
	}
	if errors.Is(err, auth.ErrExpired) || errors.Is(err, auth.ErrTimeout) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

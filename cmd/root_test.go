package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mclc/internal/auth"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("Expected GetVersion to return %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "mclc" {
		t.Errorf("Expected Use to be 'mclc', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestGetExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"generic error", errors.New("boom"), ExitCodeError},
		{"auth not found", auth.ErrAuthNotFound, ExitCodeAuthRequired},
		{"wrapped auth not found", fmt.Errorf("status: %w", auth.ErrAuthNotFound), ExitCodeAuthRequired},
		{"denied", &auth.DeniedError{Reason: auth.DenialNoXboxAccount, Code: "2148916233"}, ExitCodeAuthFailed},
		{"expired", auth.ErrExpired, ExitCodeAuthFailed},
		{"timeout", auth.ErrTimeout, ExitCodeAuthFailed},
		{"provider error", &auth.ProviderError{Stage: "xsts", Status: 500}, ExitCodeError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := getExitCode(tc.err); got != tc.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestVersionCommandOutput(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = "9.9.9-test"

	versionCmd := newVersionCmd()

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	if !strings.Contains(buf.String(), "mclc version 9.9.9-test") {
		t.Errorf("Expected version output to contain version, got %q", buf.String())
	}
}

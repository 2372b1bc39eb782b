package yggdrasil

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// ProfileSelector resolves an ambiguous multi-profile authentication
// response to one profile. It is only consulted when the server returned
// more than one available profile and no selected one.
type ProfileSelector interface {
	SelectProfile(profiles []Profile) (Profile, error)
}

// FailIfAmbiguous is the headless default: it refuses to guess.
type FailIfAmbiguous struct{}

// SelectProfile implements ProfileSelector.
func (FailIfAmbiguous) SelectProfile(profiles []Profile) (Profile, error) {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return Profile{}, fmt.Errorf("account has multiple profiles %v and no selector is configured", names)
}

// InteractiveSelector prompts on the terminal until the user picks a
// profile by number.
type InteractiveSelector struct{}

// SelectProfile implements ProfileSelector.
func (InteractiveSelector) SelectProfile(profiles []Profile) (Profile, error) {
	fmt.Println("Please select a profile:")
	for i, p := range profiles {
		fmt.Printf("  %d. %s\n", i+1, p.Name)
	}

	rl, err := readline.New(fmt.Sprintf("Enter the number (1-%d): ", len(profiles)))
	if err != nil {
		return Profile{}, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return Profile{}, errors.New("profile selection cancelled")
		}
		if err != nil {
			return Profile{}, fmt.Errorf("failed to read selection: %w", err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 1 && n <= len(profiles) {
			return profiles[n-1], nil
		}
		fmt.Println("Invalid input. Please try again.")
	}
}

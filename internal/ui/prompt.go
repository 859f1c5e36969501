package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, ErrCancelled
		}
		return false, err
	}

	// promptui returns "y" for yes
	return result == "y", nil
}

// SelectPrompt presents a fuzzy-searchable list of options
func SelectPrompt(label string, items []string) (int, string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  minInt(10, len(items)),
		Searcher: func(input string, index int) bool {
			if index < 0 || index >= len(items) {
				return false
			}
			if input == "" {
				return true
			}
			return fuzzy.MatchNormalizedFold(strings.TrimSpace(input), items[index])
		},
	}

	index, result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return -1, "", ErrCancelled
		}
		return -1, "", err
	}

	return index, result, nil
}

// ConfirmDangerousAction asks for confirmation with a warning
func ConfirmDangerousAction(action string, target string) (bool, error) {
	PrintWarning("You are about to %s: %s", action, target)
	PrintWarning("This action cannot be undone!")
	fmt.Println()

	return ConfirmPrompt(fmt.Sprintf("Are you sure you want to %s", action))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

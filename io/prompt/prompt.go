// Package prompt reads values typed at the terminal.
package prompt

import (
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
)

// DefaultPrompt asks for a single line of input. An empty answer selects defaultValue.
func DefaultPrompt(promptText, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   promptText,
		Default: defaultValue,
	}
	response, err := p.Run()
	if err != nil {
		return "", FormatPromptError(err)
	}
	response = strings.TrimRight(response, "\r\n")
	if response == "" {
		return defaultValue, nil
	}
	return response, nil
}

// FormatPromptError for the user.
func FormatPromptError(err error) error {
	switch err {
	case promptui.ErrAbort:
		return errors.New("prompt aborted, closing")
	case promptui.ErrInterrupt:
		return errors.New("keyboard interrupt, closing")
	case promptui.ErrEOF:
		return errors.New("no input received, closing")
	default:
		return err
	}
}

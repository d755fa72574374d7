package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// confirmer returns the overwrite confirmation used by gen. With -y every
// file may be overwritten; with prompting disabled none may.
func confirmer(yes, noPrompt bool, logger *slog.Logger) func(path string) (bool, error) {
	switch {
	case yes:
		return func(path string) (bool, error) {
			logger.Warn("overwriting file not generated by errgen", "path", path)
			return true, nil
		}
	case noPrompt:
		return func(path string) (bool, error) {
			logger.Debug("prompt disabled, keeping file", "path", path, "env", envNoPrompt)
			return false, nil
		}
	default:
		return askOverwrite
	}
}

func askOverwrite(path string) (bool, error) {
	var ok bool

	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s was not generated by errgen. Overwrite it?", path),
		Help:    "errgen only replaces files that start with its generated-code header.",
		Default: false,
	}

	if err := survey.AskOne(prompt, &ok); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, errors.New("interrupted")
		}

		return false, err
	}

	return ok, nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/shearops/shear/internal/prompt"
)

// formConfirmer collects the engine's confirmations through interactive
// terminal forms. Aborting a form (Esc, Ctrl+C) declines cleanly rather
// than erroring, so an operator can back out of a delete without
// leaving a failed run behind.
type formConfirmer struct{}

var _ prompt.Confirmer = formConfirmer{}

func (formConfirmer) ConfirmDelete(phrase string) (bool, error) {
	var input string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Delete mode permanently removes file versions. This cannot be undone.").
			Description(fmt.Sprintf("Type %s to proceed", phrase)).
			Value(&input),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return input == phrase, nil
}

func (formConfirmer) ContinueBatch(processed, total int) (bool, error) {
	cont := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Batch complete: %d/%d items processed", processed, total)).
			Description("Continue with the next batch?").
			Affirmative("Continue").
			Negative("Stop here").
			Value(&cont),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("reading batch prompt: %w", err)
	}
	return cont, nil
}

// Package prompt collects the operator confirmations that guard
// irreversible steps: the typed delete phrase and the between-batch
// continue/quit decision.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer answers the two questions the engine asks an operator.
type Confirmer interface {
	// ConfirmDelete asks the operator to type phrase exactly,
	// case-sensitive. ok reports whether the input matched.
	ConfirmDelete(phrase string) (ok bool, err error)

	// ContinueBatch asks whether to start the next batch after
	// processed of total items are done.
	ContinueBatch(processed, total int) (bool, error)
}

// Stdin reads confirmations interactively.
type Stdin struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

var _ Confirmer = (*Stdin)(nil)

func (s *Stdin) readLine() (string, error) {
	if s.reader == nil {
		s.reader = bufio.NewReader(s.In)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ConfirmDelete requires the exact phrase. Any other input declines;
// it does not re-prompt, matching the one-shot gate semantics.
func (s *Stdin) ConfirmDelete(phrase string) (bool, error) {
	fmt.Fprintf(s.Out, "\nDelete mode permanently removes file versions. This cannot be undone.\n")
	fmt.Fprintf(s.Out, "Type %s to proceed: ", phrase)
	input, err := s.readLine()
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return input == phrase, nil
}

// ContinueBatch accepts y/yes to continue; anything else quits.
func (s *Stdin) ContinueBatch(processed, total int) (bool, error) {
	fmt.Fprintf(s.Out, "\nBatch complete: %d/%d items processed. Continue with next batch? [y/N]: ", processed, total)
	input, err := s.readLine()
	if err != nil {
		return false, fmt.Errorf("reading batch prompt: %w", err)
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes", nil
}

// PreApproved carries a confirmation phrase supplied up front (the
// --confirm flag) for non-interactive callers. The phrase must still
// match exactly; pre-approval is not a bypass.
type PreApproved struct {
	Phrase string
}

var _ Confirmer = PreApproved{}

func (p PreApproved) ConfirmDelete(phrase string) (bool, error) {
	return p.Phrase == phrase, nil
}

// ContinueBatch always continues: a caller that pre-approved deletion
// has no operator to ask.
func (p PreApproved) ContinueBatch(processed, total int) (bool, error) {
	return true, nil
}

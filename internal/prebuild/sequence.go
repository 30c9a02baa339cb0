// SPDX-License-Identifier: MPL-2.0

package prebuild

import (
	"context"
	"fmt"
	"io"
)

type (
	// Step is one unit of pre-build work.
	Step struct {
		// Description is printed in the progress header.
		Description string
		// Run performs the step. Output goes to the writer it is given.
		Run func(ctx context.Context, out io.Writer) error
	}

	// Sequence numbers steps as they run and reports progress as
	// "[Pre-Build i/n]: description".
	Sequence struct {
		index  int
		count  int
		out    io.Writer
		errOut io.Writer
	}

	// StepError reports a failed step with its position in the sequence.
	StepError struct {
		Index       int
		Count       int
		Description string
		Err         error
	}
)

// NewSequence returns a sequence expecting count steps. Progress goes to
// out, failures to errOut.
func NewSequence(count int, out, errOut io.Writer) *Sequence {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Sequence{count: count, out: out, errOut: errOut}
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("[Pre-Build %d/%d] FAILED: %s (%v)", e.Index, e.Count, e.Description, e.Err)
}

// Unwrap returns the step's own error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Index returns the number of steps started so far.
func (s *Sequence) Index() int {
	return s.index
}

// Count returns the planned number of steps.
func (s *Sequence) Count() int {
	return s.count
}

// Run advances the sequence, prints the step header and runs step. A failed
// step is reported on the error writer and returned as a *StepError.
func (s *Sequence) Run(ctx context.Context, step Step) error {
	s.index++
	fmt.Fprintf(s.out, "[Pre-Build %d/%d]: %s\n", s.index, s.count, step.Description)

	err := ctx.Err()
	if err == nil {
		err = step.Run(ctx, s.out)
	}
	if err != nil {
		stepErr := &StepError{Index: s.index, Count: s.count, Description: step.Description, Err: err}
		fmt.Fprintln(s.errOut, stepErr.Error())
		return stepErr
	}
	return nil
}

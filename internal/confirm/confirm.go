// Package confirm provides the yes/no confirmation sources used before each
// tracker write: a line-based console reader and a bubbletea button prompt.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInterrupted is returned when the operator aborts a prompt with Ctrl+C
var ErrInterrupted = errors.New("interrupted")

// IsYes reports whether a typed answer is affirmative. Only "y", in either
// case and ignoring surrounding whitespace, counts; "yes" and everything
// else is a no.
func IsYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

// Line asks on Out and reads one line per question from In
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a Line confirmer
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and blocks for an answer. End of input counts as no.
func (l *Line) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprint(l.out, prompt); err != nil {
		return false, err
	}

	answer, err := l.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Keep the next output off the prompt line
			fmt.Fprintln(l.out)
			return IsYes(answer), nil
		}
		return false, err
	}

	return IsYes(answer), nil
}

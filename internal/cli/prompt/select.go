// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/settler/internal/errors"
)

// Sentinel errors for interactive prompts.
var (
	ErrNoChoices          = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Prompter asks questions on a reader/writer pair.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// New creates a Prompter using stdin and stdout.
func New() *Prompter {
	return NewWithIO(os.Stdin, os.Stdout)
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Select asks the user to choose one of labels and returns its index.
//
// Returns:
//   - ErrNoChoices if labels is empty
//   - 0 without prompting if only one label exists
//   - ErrInvalidSelection if the answer is not a number in range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
//
// An empty answer selects the first label.
func (p *Prompter) Select(title string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, ErrNoChoices
	}
	if len(labels) == 1 {
		return 0, nil
	}

	fmt.Fprintf(p.writer, "%s:\n", title)
	for i, label := range labels {
		fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, label)
	}
	fmt.Fprintf(p.writer, "Select [1]: ")

	input, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > len(labels) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(labels))
	}
	return selection - 1, nil
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.writer, "%s [y/N]: ", question)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil {
		// A final line without a newline still counts.
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(input), nil
}

package adapters

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"netapply-agent/internal/domain/interfaces"
)

// ConsolePrompter is a Prompter implementation that reads a y/n answer from a terminal
type ConsolePrompter struct {
	in  io.Reader
	out io.Writer
}

// NewConsolePrompter creates a new ConsolePrompter bound to stdin/stdout
func NewConsolePrompter() interfaces.Prompter {
	return &ConsolePrompter{
		in:  os.Stdin,
		out: os.Stdout,
	}
}

// Confirm displays the message and reports whether the user answered with a literal y/Y.
// Any other input, including EOF, counts as a refusal.
func (p *ConsolePrompter) Confirm(message string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", message); err != nil {
		return false, err
	}

	reader := bufio.NewReader(p.in)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y", nil
}

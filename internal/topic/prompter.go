// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topic

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter abstracts the interactive console so the orchestrator can be
// driven by a terminal or by a scripted test.
type Prompter interface {
	// Ask prints the prompt and returns the user's line, trimmed.
	Ask(prompt string) (string, error)

	// Say prints a formatted message to the user.
	Say(format string, args ...any)
}

// Console is a Prompter over an input reader and output writer.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewConsole returns a Console reading from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{scanner: bufio.NewScanner(in), out: out}
}

func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

func (c *Console) Say(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the user for IMAP credentials.
type Prompter interface {
	Username() (string, error)
	Password() (string, error)
	// Notice prints a line next to the prompts.
	Notice(msg string)
}

type termPrompter struct {
	in     *bufio.Reader
	out    io.Writer
	stdin  *os.File
	isTerm func(fd int) bool
}

// newTermPrompter reads from stdin and echoes prompts to stderr so that
// stdout stays clean for --json.
func newTermPrompter() *termPrompter {
	return &termPrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		stdin:  os.Stdin,
		isTerm: term.IsTerminal,
	}
}

func (p *termPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *termPrompter) Username() (string, error) {
	for {
		fmt.Fprint(p.out, "Enter username: ")
		username, err := p.readLine()
		if err != nil {
			return "", err
		}
		if username != "" {
			return username, nil
		}
	}
}

func (p *termPrompter) Password() (string, error) {
	fmt.Fprint(p.out, "Enter your password: ")

	fd := int(p.stdin.Fd())
	if !p.isTerm(fd) {
		return p.readLine()
	}

	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

func (p *termPrompter) Notice(msg string) {
	fmt.Fprintln(p.out, msg)
}

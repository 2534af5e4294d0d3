package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewTerminalPrompter reads from in and writes prompts to out. Secrets are
// read with echo disabled when in is a terminal.
func NewTerminalPrompter(in *os.File, out io.Writer) Prompter {
	fd := int(in.Fd())
	return &terminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
		fd:  fd,
		tty: term.IsTerminal(fd),
	}
}

// newPrompter is used by tests that feed scripted input.
func newPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out, fd: -1}
}

func (p *terminalPrompter) Ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.readLine()
	return strings.TrimSpace(line), err
}

func (p *terminalPrompter) AskSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.tty {
		return p.readLine()
	}

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func (p *terminalPrompter) Confirm(label string) (bool, error) {
	answer, err := p.Ask(label + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

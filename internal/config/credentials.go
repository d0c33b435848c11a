package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator for values missing from the configuration.
type Prompter interface {
	ReadLine(label string) (string, error)
	ReadSecret(label string) (string, error)
}

// TerminalPrompter reads from In and writes labels to Out. Secrets are read
// without echo when In is a terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on in, writing labels to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{In: in, Out: out}
}

func (p *TerminalPrompter) ReadLine(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSpace(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) ReadSecret(label string) (string, error) {
	f, ok := p.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ReadLine(label)
	}
	fd := int(f.Fd())
	fmt.Fprint(p.Out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSpace(label), err)
	}
	return string(secret), nil
}

// ResolveCredentials prompts for the username and password when they were
// not configured. Account falls back to the username.
func (c *Config) ResolveCredentials(p Prompter) error {
	if c.Username == "" {
		username, err := p.ReadLine("LinkedIn username: ")
		if err != nil {
			return err
		}
		c.Username = username
	}
	if c.Password == "" {
		password, err := p.ReadSecret("LinkedIn password: ")
		if err != nil {
			return err
		}
		c.Password = password
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("config error: username and password are required")
	}
	return nil
}

// Confirm asks a yes/no question; only "y" or "yes" confirm.
func Confirm(p Prompter, question string) (bool, error) {
	answer, err := p.ReadLine(question + " (y/n): ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

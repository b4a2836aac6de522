package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter читает ответы оператора построчно.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd терминала для ввода пароля без эха; -1 если ввод не терминал
	fd int
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

func (p *Prompter) Prompt(message string) (string, error) {
	if _, err := fmt.Fprint(p.out, message); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password hides input when stdin is a terminal and falls back to an echoed
// line otherwise (pipes, tests).
func (p *Prompter) Password(message string) (string, error) {
	if p.fd < 0 {
		return p.Prompt(message)
	}

	if _, err := fmt.Fprint(p.out, message); err != nil {
		return "", err
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

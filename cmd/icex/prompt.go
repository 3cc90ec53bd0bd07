package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/gorewood/icex/internal/output"
)

// prompter reads interactive answers from stdin. A single buffered reader is
// shared across prompts so piped input is not swallowed between questions.
type prompter struct {
	printer *output.Printer
	stdin   io.Reader
	reader  *bufio.Reader
}

func newPrompter(printer *output.Printer, stdin io.Reader) *prompter {
	return &prompter{printer: printer, stdin: stdin, reader: bufio.NewReader(stdin)}
}

// String asks for a line of input, returning defaultValue on an empty answer.
func (p *prompter) String(label, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.printer.Print("%s [%s]: ", label, defaultValue)
	} else {
		p.printer.Print("%s: ", label)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// YesNo asks a yes/no question. Empty or unrecognized answers take the
// default.
func (p *prompter) YesNo(label string, defaultYes bool) (bool, error) {
	hint := "[Y/n]"
	if !defaultYes {
		hint = "[y/N]"
	}
	p.printer.Print("%s %s ", label, hint)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

// Secret asks for a value without echoing it when stdin is a terminal.
// Piped input falls back to a plain line read so scripted runs still work.
func (p *prompter) Secret(label string) (string, error) {
	p.printer.Print("%s: ", label)

	if file, ok := p.stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		p.printer.Println()
		if err != nil {
			return "", output.NewUserError("could not read the password")
		}
		return string(secret), nil
	}

	return p.readLine()
}

// readLine reads one trimmed line, tolerating a final unterminated line at
// EOF.
func (p *prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", output.NewUserError("could not read input")
	}
	if err != nil && line == "" {
		return "", output.NewUserError("input closed before all questions were answered")
	}
	return strings.TrimSpace(line), nil
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/terminal"
)

// prompter reads user input. Output goes to out so tests can capture it;
// passwords are read without echo only when stdin is a real terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// line prompts and reads one trimmed line.
func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	text, err := p.in.ReadString('\n')
	if err != nil && text == "" {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// lineDefault prompts with a default shown in brackets; an empty answer
// keeps the default. Used by the edit form to preserve entered values.
func (p *prompter) lineDefault(prompt, def string) (string, error) {
	text, err := p.line(fmt.Sprintf("%s [%s]: ", prompt, def))
	if err != nil {
		return "", err
	}
	if text == "" {
		return def, nil
	}
	return text, nil
}

// password reads a secret without echoing when possible.
func (p *prompter) password(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	fd := int(os.Stdin.Fd())
	if terminal.IsTerminal(fd) {
		secret, err := terminal.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	// Piped input (tests, scripts): fall back to a plain line read.
	return p.line("")
}

// yesNo asks a yes/no question, defaulting to no.
func (p *prompter) yesNo(prompt string) (bool, error) {
	text, err := p.line(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	text = strings.ToLower(text)
	return text == "y" || text == "yes", nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/novapay/internal/input"
	"github.com/aretw0/novapay/pkg/domain"
	"golang.org/x/term"
)

var (
	// errNoValue means the user left an optional field blank.
	errNoValue = errors.New("no value")
	// errBadAnswer means the answer does not fit the field kind.
	errBadAnswer = errors.New("invalid answer")
)

// Prompter reads answers line by line. Secrets are read without echo
// when the input is a terminal.
type Prompter struct {
	in      *bufio.Reader
	out     io.Writer
	fd      int
	tty     bool
	maxSize int
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer, maxSize int) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, maxSize: maxSize}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd, p.tty = int(f.Fd()), true
	}
	return p
}

// Line prints prompt and returns the next line without its newline.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads a value without echoing it back.
func (p *Prompter) Secret(prompt string) (string, error) {
	if !p.tty {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Ask collects one field. Commands (":back") are returned as raw text
// with isCommand set.
func (p *Prompter) Ask(f domain.Field, current any) (value any, isCommand bool, err error) {
	prompt := "  " + f.Prompt
	switch {
	case f.Kind == domain.FieldChoice && len(f.Options) > 0:
		for i, opt := range f.Options {
			fmt.Fprintf(p.out, "    %d) %s\n", i+1, opt)
		}
	case f.Kind == domain.FieldBool:
		prompt += " [y/n]"
	}
	if hint := defaultHint(f, current); hint != "" {
		prompt += " (" + hint + ")"
	}
	prompt += ": "

	var raw string
	if f.Kind == domain.FieldSecret {
		raw, err = p.Secret(prompt)
	} else {
		raw, err = p.Line(prompt)
	}
	if err != nil {
		return nil, false, err
	}

	raw, err = input.Sanitize(raw, p.maxSize)
	if err != nil {
		return nil, false, err
	}
	if strings.HasPrefix(raw, ":") {
		return raw, true, nil
	}
	if raw == "" {
		switch {
		case current != nil && current != "":
			return current, false, nil
		case f.Default != "":
			raw = f.Default
		case f.Optional:
			return nil, false, errNoValue
		}
	}

	v, err := parseValue(f, raw)
	return v, false, err
}

func defaultHint(f domain.Field, current any) string {
	switch {
	case f.Kind == domain.FieldSecret:
		if current != nil && current != "" {
			return "enter to keep"
		}
		return ""
	case current != nil && current != "":
		return fmt.Sprint(current)
	case f.Default != "":
		return f.Default
	case f.Optional:
		return "optional"
	}
	return ""
}

func parseValue(f domain.Field, raw string) (any, error) {
	switch f.Kind {
	case domain.FieldNumber:
		if raw == "" {
			return "", nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", errBadAnswer, raw)
		}
		return n, nil
	case domain.FieldBool:
		switch strings.ToLower(raw) {
		case "y", "yes", "true", "1":
			return true, nil
		case "", "n", "no", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%w: answer y or n", errBadAnswer)
	case domain.FieldChoice:
		if i, err := strconv.Atoi(raw); err == nil && i >= 1 && i <= len(f.Options) {
			return f.Options[i-1], nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}

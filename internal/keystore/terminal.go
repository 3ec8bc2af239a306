package keystore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by a terminal prompter when neither stdin nor
// the controlling terminal can be read.
var ErrNoTerminal = errors.New("no terminal available")

var ttyPath = "/dev/tty"

// TerminalPrompter reads a secret with echo disabled. When stdin is not a
// terminal (for example when error output is piped in) it reads from the
// controlling terminal instead, opened only when a prompt is shown.
func TerminalPrompter(stdin *os.File, out io.Writer) Prompter {
	if stdin != nil && term.IsTerminal(int(stdin.Fd())) {
		return readHidden(stdin, out)
	}
	return func(label string) (string, error) {
		tty, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
		if err != nil {
			return "", errors.Mark(errors.Wrap(err, "opening terminal"), ErrNoTerminal)
		}
		defer tty.Close()
		return readHidden(tty, tty)(label)
	}
}

func readHidden(f *os.File, out io.Writer) Prompter {
	return func(label string) (string, error) {
		fmt.Fprint(out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			// Fall back to a visible line read when echo cannot be disabled.
			line, rerr := bufio.NewReader(f).ReadString('\n')
			if rerr != nil && rerr != io.EOF {
				return "", errors.Wrap(err, "reading from terminal")
			}
			return strings.TrimSpace(line), nil
		}
		return strings.TrimSpace(string(b)), nil
	}
}

// ReaderPrompter reads a single line from r. It is used when the key is
// piped into `clihelper key set`.
func ReaderPrompter(r io.Reader) Prompter {
	return func(string) (string, error) {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", errors.Wrap(err, "reading key")
		}
		return strings.TrimSpace(line), nil
	}
}

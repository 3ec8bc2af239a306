package shellsetup

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cockroachdb/errors"
)

// ReadlineConfirm asks on the terminal using readline. An empty answer
// takes def; Ctrl-C and EOF answer no.
func ReadlineConfirm(def bool) Confirm {
	return func(question string) (bool, error) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          question,
			InterruptPrompt: "^C",
			EOFPrompt:       "n",
		})
		if err != nil {
			return false, errors.Wrap(err, "initializing prompt")
		}
		defer rl.Close()

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		return ParseYes(line, def), nil
	}
}

// ParseYes interprets a yes/no answer.
func ParseYes(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def
	case "y", "yes":
		return true
	default:
		return false
	}
}

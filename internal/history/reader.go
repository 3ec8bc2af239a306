package history

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/redact"
	"go.uber.org/zap"
)

// Unavailable is the history block used when no history can be read.
const Unavailable = "Could not retrieve command history"

const subprocessTimeout = time.Second

// Reader collects recent shell commands for prompt context.
type Reader struct {
	// Path of the history file. Empty means DetectFile.
	Path string
	// Lines is how many recent commands to include.
	Lines int
	// Self is the program name; direct invocations of it are skipped.
	Self string
	// Redactor is applied to the formatted block.
	Redactor redact.Redactor
	// Builtin runs the shell `history` builtin as a fallback when no file
	// can be read. Nil uses an interactive bash subprocess.
	Builtin func(ctx context.Context, n int) (string, error)
	Logger  *zap.Logger
}

// DetectFile returns the history file for the current user: $HISTFILE, then
// ~/.zsh_history when $SHELL is zsh, then ~/.bash_history.
func DetectFile() (string, error) {
	if p := os.Getenv("HISTFILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	if filepath.Base(os.Getenv("SHELL")) == "zsh" {
		return filepath.Join(home, ".zsh_history"), nil
	}
	return filepath.Join(home, ".bash_history"), nil
}

// Entries returns up to r.Lines recent commands, oldest first.
func (r *Reader) Entries(ctx context.Context) ([]Entry, error) {
	log := r.logger()
	if r.Lines <= 0 {
		return nil, nil
	}

	entries, err := r.fromFile()
	if err == nil && len(entries) > 0 {
		return Tail(r.filter(entries), r.Lines), nil
	}
	if err != nil {
		log.Debug("history file unavailable, trying shell builtin", zap.Error(err))
	}

	builtin := r.Builtin
	if builtin == nil {
		builtin = bashBuiltin
	}
	ctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()
	// Ask for extra lines so filtering our own invocations still leaves r.Lines.
	out, berr := builtin(ctx, r.Lines+5)
	if berr != nil {
		if err != nil {
			return nil, errors.CombineErrors(err, berr)
		}
		return nil, berr
	}
	return Tail(r.filter(parseBuiltin(out)), r.Lines), nil
}

// Context formats recent history for the prompt and redacts it. Any failure
// yields Unavailable.
func (r *Reader) Context(ctx context.Context) string {
	entries, err := r.Entries(ctx)
	if err != nil {
		r.logger().Debug("history unavailable", zap.Error(err))
		return Unavailable
	}
	if len(entries) == 0 {
		return Unavailable
	}
	return r.Redactor.Sanitize(Format(entries))
}

// Format renders entries the way the shell `history` builtin does, followed
// by the most recent command.
func Format(entries []Entry) string {
	var b strings.Builder
	b.WriteString("Recent command history:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%5d  %s\n", i+1, e.Command)
	}
	if len(entries) > 0 {
		b.WriteString("\nLast command run: ")
		b.WriteString(entries[len(entries)-1].Command)
	}
	return b.String()
}

func (r *Reader) fromFile() ([]Entry, error) {
	path := r.Path
	if path == "" {
		p, err := DetectFile()
		if err != nil {
			return nil, err
		}
		path = p
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening history file")
	}
	defer f.Close()
	return Parse(f)
}

// filter drops direct invocations of the program itself. Pipelines that end
// in it are kept since they name the failing command.
func (r *Reader) filter(entries []Entry) []Entry {
	self := r.Self
	if self == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		fields := strings.Fields(e.Command)
		if len(fields) > 0 && filepath.Base(fields[0]) == self {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *Reader) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func bashBuiltin(ctx context.Context, n int) (string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-i", "-c", fmt.Sprintf("history %d", n))
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrap(err, "running bash history")
	}
	return string(out), nil
}

package shellsetup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/config"
)

const (
	markerStart = "# >>> clihelper history flush >>>"
	markerEnd   = "# <<< clihelper history flush <<<"
)

// Shell is a supported interactive shell.
type Shell string

const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
)

// State is the recorded first-run decision.
type State string

const (
	StateUnset    State = ""
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
)

// Confirm asks a yes/no question.
type Confirm func(question string) (bool, error)

// Setup manages the history-flush section of a shell startup file and the
// marker recording whether the user accepted it.
type Setup struct {
	Shell      Shell
	RCPath     string
	MarkerPath string
	Out        io.Writer
}

// Status describes the current installation.
type Status struct {
	Shell     Shell
	RCPath    string
	Installed bool
	State     State
}

// DetectShell returns the user's shell from $SHELL. Anything other than zsh
// is treated as bash.
func DetectShell() Shell {
	if filepath.Base(os.Getenv("SHELL")) == "zsh" {
		return Zsh
	}
	return Bash
}

// New returns a Setup for the detected shell with default file locations.
func New(out io.Writer) (*Setup, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine home directory")
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	shell := DetectShell()
	rc := ".bashrc"
	if shell == Zsh {
		rc = ".zshrc"
	}
	return &Setup{
		Shell:      shell,
		RCPath:     filepath.Join(home, rc),
		MarkerPath: filepath.Join(dir, "shell_setup"),
		Out:        out,
	}, nil
}

// Snippet returns the marker-delimited section for shell.
func Snippet(shell Shell) string {
	var b strings.Builder
	b.WriteString(markerStart + "\n")
	switch shell {
	case Zsh:
		b.WriteString("setopt INC_APPEND_HISTORY\n")
	default:
		b.WriteString("shopt -s histappend\n")
		b.WriteString("PROMPT_COMMAND=\"history -a${PROMPT_COMMAND:+; $PROMPT_COMMAND}\"\n")
	}
	b.WriteString(markerEnd + "\n")
	return b.String()
}

// State reads the first-run marker.
func (s *Setup) State() (State, error) {
	data, err := os.ReadFile(s.MarkerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return StateUnset, nil
		}
		return StateUnset, errors.Wrap(err, "reading shell setup marker")
	}
	switch State(strings.TrimSpace(string(data))) {
	case StateEnabled:
		return StateEnabled, nil
	case StateDisabled:
		return StateDisabled, nil
	default:
		return StateUnset, nil
	}
}

// Ensure runs the first-run offer once. With a nil confirm nothing is
// recorded, so the offer is repeated on the next interactive run.
func (s *Setup) Ensure(confirm Confirm) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if state != StateUnset || confirm == nil {
		return nil
	}

	question := fmt.Sprintf("Enable instant history sync so clihelper sees your latest commands? This adds a few lines to %s [Y/n]: ", s.RCPath)
	ok, err := confirm(question)
	if err != nil {
		return errors.Wrap(err, "reading answer")
	}
	if !ok {
		if err := s.writeMarker(StateDisabled); err != nil {
			return err
		}
		s.printf("Skipped. Run `clihelper shell install` to enable it later.\n\n")
		return nil
	}
	if err := s.Install(); err != nil {
		return err
	}
	s.printf("History sync enabled. Restart your shell or run: source %s\n\n", s.RCPath)
	return nil
}

// Install writes or replaces the section in the startup file and records
// the enabled state.
func (s *Setup) Install() error {
	existing, err := os.ReadFile(s.RCPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "reading shell startup file")
	}
	content := replaceSection(string(existing), Snippet(s.Shell))
	if err := writeKeepingMode(s.RCPath, content); err != nil {
		return errors.Wrap(err, "writing shell startup file")
	}
	return s.writeMarker(StateEnabled)
}

// Uninstall removes the section and records the disabled state. It reports
// whether a section was found.
func (s *Setup) Uninstall() (bool, error) {
	existing, err := os.ReadFile(s.RCPath)
	if err != nil && !os.IsNotExist(err) {
		return false, errors.Wrap(err, "reading shell startup file")
	}
	found := strings.Contains(string(existing), markerStart)
	if found {
		if err := writeKeepingMode(s.RCPath, removeSection(string(existing))); err != nil {
			return false, errors.Wrap(err, "writing shell startup file")
		}
	}
	return found, s.writeMarker(StateDisabled)
}

// Status reports whether the section is present and the recorded state.
func (s *Setup) Status() (Status, error) {
	st := Status{Shell: s.Shell, RCPath: s.RCPath}
	state, err := s.State()
	if err != nil {
		return st, err
	}
	st.State = state
	existing, err := os.ReadFile(s.RCPath)
	if err != nil && !os.IsNotExist(err) {
		return st, errors.Wrap(err, "reading shell startup file")
	}
	st.Installed = strings.Contains(string(existing), markerStart) && strings.Contains(string(existing), markerEnd)
	return st, nil
}

func (s *Setup) writeMarker(state State) error {
	if err := os.MkdirAll(filepath.Dir(s.MarkerPath), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := os.WriteFile(s.MarkerPath, []byte(string(state)+"\n"), 0o644); err != nil {
		return errors.Wrap(err, "writing shell setup marker")
	}
	return nil
}

func (s *Setup) printf(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format, args...)
	}
}

func writeKeepingMode(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(content), mode)
}

func replaceSection(existing, section string) string {
	startIdx := strings.Index(existing, markerStart)
	endIdx := strings.Index(existing, markerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		if existing != "" && !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(markerEnd):], "\n")
	return before + section + after
}

func removeSection(existing string) string {
	startIdx := strings.Index(existing, markerStart)
	endIdx := strings.Index(existing, markerEnd)

	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return existing
	}

	before := existing[:startIdx]
	after := strings.TrimPrefix(existing[endIdx+len(markerEnd):], "\n")
	return before + after
}

package history

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Entry is one command recorded in shell history.
type Entry struct {
	Command   string
	Timestamp time.Time // zero when the history format carries none
}

var (
	// zsh extended history: ": <start>:<elapsed>;<command>"
	zshExtended = regexp.MustCompile(`^:\s*(\d+):(\d+);(.*)$`)
	// bash HISTTIMEFORMAT comment preceding a command: "#<epoch>"
	bashTimestamp = regexp.MustCompile(`^#(\d{9,})$`)
	// one line of `history N` output: "  501  git status"
	builtinLine = regexp.MustCompile(`^\s*\d+\*?\s+(.*)$`)
)

const maxLineBytes = 1 << 20

// Parse reads a bash or zsh history file. Both formats are accepted in the
// same stream; zsh multi-line commands (trailing backslash) are joined.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var pendingTS time.Time
	var cont *Entry

	for scanner.Scan() {
		line := scanner.Text()

		if cont != nil {
			cont.Command += "\n" + strings.TrimSuffix(line, `\`)
			if !strings.HasSuffix(line, `\`) {
				entries = append(entries, *cont)
				cont = nil
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := bashTimestamp.FindStringSubmatch(line); m != nil {
			if sec, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				pendingTS = time.Unix(sec, 0)
			}
			continue
		}

		entry := Entry{Command: line, Timestamp: pendingTS}
		pendingTS = time.Time{}
		if m := zshExtended.FindStringSubmatch(line); m != nil {
			sec, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				entry.Timestamp = time.Unix(sec, 0)
			}
			entry.Command = m[3]
		}

		if strings.HasSuffix(entry.Command, `\`) {
			entry.Command = strings.TrimSuffix(entry.Command, `\`)
			cont = &entry
			continue
		}

		entry.Command = strings.TrimSpace(entry.Command)
		if entry.Command == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if cont != nil {
		entries = append(entries, *cont)
	}
	if err := scanner.Err(); err != nil {
		return entries, errors.Wrap(err, "reading history")
	}
	return entries, nil
}

// parseBuiltin parses the output of the shell's `history` builtin.
func parseBuiltin(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		m := builtinLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		cmd := strings.TrimSpace(m[1])
		if cmd == "" {
			continue
		}
		entries = append(entries, Entry{Command: cmd})
	}
	return entries
}

// Tail returns the last n entries of entries.
func Tail(entries []Entry, n int) []Entry {
	if n <= 0 {
		return nil
	}
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

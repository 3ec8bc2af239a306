package prompt

import (
	"strings"
)

// Mode selects the instruction preamble.
type Mode int

const (
	// ModeQuery answers a free-text question typed as arguments.
	ModeQuery Mode = iota
	// ModeError diagnoses error output piped on stdin.
	ModeError
)

func (m Mode) String() string {
	if m == ModeError {
		return "error"
	}
	return "query"
}

// Input holds the already-redacted parts of a prompt.
type Input struct {
	Mode    Mode
	History string // formatted history block, used verbatim
	Content string // question (ModeQuery) or error output (ModeError)
	Context string // optional user context, ModeError only
}

const queryPreamble = "You are a helpful CLI assistant. A user wants help with command-line tasks."

const queryInstructions = `Please provide helpful command-line advice. If they're asking about a specific command:
1. Explain what the command does
2. Provide the correct syntax (prefix commands with $)
3. Give practical examples`

const errorPreamble = "You are a CLI assistant. A user ran a command that didn't work."

const errorInstructions = `Please:
1. Briefly explain what went wrong
2. Provide the correct command (prefix with $)
3. Add a short explanation`

const closing = "Be concise and practical."

// Build assembles the prompt text for in. It performs no redaction.
func Build(in Input) string {
	var b strings.Builder

	if in.Mode == ModeError {
		b.WriteString(errorPreamble)
	} else {
		b.WriteString(queryPreamble)
	}
	b.WriteString("\n\n")
	b.WriteString(in.History)
	b.WriteString("\n\n")

	switch in.Mode {
	case ModeError:
		b.WriteString("Error output:\n")
		b.WriteString(in.Content)
		b.WriteString("\n\n")
		if strings.TrimSpace(in.Context) != "" {
			b.WriteString("User context: ")
			b.WriteString(in.Context)
			b.WriteString("\n\n")
		}
		b.WriteString(errorInstructions)
	default:
		b.WriteString("User's question: ")
		b.WriteString(in.Content)
		b.WriteString("\n\n")
		b.WriteString(queryInstructions)
	}

	b.WriteString("\n\n")
	b.WriteString(closing)
	return b.String()
}

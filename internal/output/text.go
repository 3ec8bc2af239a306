package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/clihelper/internal/assist"
)

const ruleWidth = 50

// TextWriter frames the answer between horizontal rules.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *assist.Result) error {
	ew := &errWriter{w: w}
	rule := strings.Repeat("=", ruleWidth)

	ew.println("")
	ew.println(rule)
	ew.println("🤖 CLIHelper says:")
	ew.println(rule)
	ew.println(res.Message())
	ew.println(rule)
	ew.println("")

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

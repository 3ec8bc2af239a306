package output

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/assist"
)

// Writer writes an answer in a specific format.
type Writer interface {
	Write(w io.Writer, res *assist.Result) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "", "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, errors.Newf("unsupported output format: %s", format)
	}
}

// WriteResult writes res to w in format. Unknown formats fall back to text
// so an answer is always shown.
func WriteResult(w io.Writer, format string, res *assist.Result) error {
	writer, err := GetWriter(format)
	if err != nil {
		writer = &TextWriter{}
	}
	return writer.Write(w, res)
}

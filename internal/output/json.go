package output

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/assist"
)

type jsonAnswer struct {
	RunID     string `json:"runId,omitempty"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	OK        bool   `json:"ok"`
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
	Cached    bool   `json:"cached"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// JSONWriter outputs the answer and call metadata as a JSON object.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, res *assist.Result) error {
	out := jsonAnswer{
		RunID:     res.RunID,
		Provider:  res.Provider,
		Model:     res.Model,
		OK:        res.OK(),
		Cached:    res.Cached,
		ElapsedMs: res.Elapsed.Milliseconds(),
	}
	if res.OK() {
		out.Answer = res.Text
	} else {
		out.Error = res.Message()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	ew := &errWriter{w: w}
	ew.printf("%s\n", data)
	if ew.err != nil {
		return errors.Wrap(ew.err, "writing JSON")
	}
	return nil
}

package assist

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/cache"
	"github.com/dshills/clihelper/internal/providers"
	"go.uber.org/zap"
)

// Result is the outcome of one completion attempt. Exactly one of Text or
// Err is meaningful: Err is nil on success.
type Result struct {
	Text     string
	Err      error
	Provider string
	Model    string
	Cached   bool
	Elapsed  time.Duration
	RunID    string
	// NotSent marks failures raised before any request was made.
	NotSent bool
}

// OK reports whether the call produced an answer.
func (r Result) OK() bool { return r.Err == nil }

// Message returns the answer text, or a readable description of the failure
// followed by any hints attached to the error. It is never empty.
func (r Result) Message() string {
	if r.Err == nil {
		return r.Text
	}
	var b strings.Builder
	if r.NotSent {
		b.WriteString("Could not call ")
	} else {
		b.WriteString("Error calling ")
	}
	b.WriteString(providers.Label(r.Provider))
	b.WriteString(" API: ")
	b.WriteString(r.Err.Error())
	if hints := errors.FlattenHints(r.Err); hints != "" {
		b.WriteString("\nHint: ")
		b.WriteString(hints)
	}
	return b.String()
}

// Failed builds a failure Result for errors raised before a call could be
// made, such as a missing API key or an unknown provider.
func Failed(provider, model string, err error) Result {
	return Result{Provider: provider, Model: model, Err: err, NotSent: true}
}

// Options configures an Assistant.
type Options struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds a single Invoke. Zero means no deadline beyond ctx.
	Timeout time.Duration
	RunID   string
	Cache   *cache.Cache
	Logger  *zap.Logger
}

// Assistant sends prompts to a provider with fixed decoding parameters and
// caches successful answers.
type Assistant struct {
	completer providers.Completer
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

// New creates an Assistant around completer.
func New(completer providers.Completer, opts Options) *Assistant {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		completer: completer,
		opts:      opts,
		log:       log.With(zap.String("run_id", opts.RunID)),
		now:       time.Now,
	}
}

// Invoke sends prompt and returns the first completion text. Failures of any
// kind are reported in Result.Err; Invoke itself never fails.
func (a *Assistant) Invoke(ctx context.Context, prompt string) Result {
	start := a.now()
	res := Result{Provider: a.opts.Provider, Model: a.opts.Model, RunID: a.opts.RunID}

	key := cache.BuildCacheKey(a.opts.Provider, a.opts.Model, prompt)
	if a.opts.Cache != nil {
		if text, ok := a.opts.Cache.Get(key); ok {
			res.Text = text
			res.Cached = true
			res.Elapsed = a.now().Sub(start)
			a.log.Debug("cache hit", zap.String("provider", res.Provider), zap.String("model", res.Model))
			return res
		}
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	resp, err := a.completer.Complete(ctx, providers.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	})
	res.Elapsed = a.now().Sub(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.WithHint(err, "the request timed out; raise timeoutSeconds with `clihelper config set timeoutSeconds <n>`")
		}
		res.Err = err
		a.log.Warn("completion failed",
			zap.String("provider", res.Provider),
			zap.Duration("elapsed", res.Elapsed),
			zap.Error(err),
		)
		return res
	}

	if strings.TrimSpace(resp.Content) == "" {
		res.Err = errors.WithHint(errors.New("empty response from provider"), "try again or rephrase the question")
		a.log.Warn("empty completion", zap.String("provider", res.Provider), zap.String("model", res.Model))
		return res
	}

	res.Text = resp.Content
	a.log.Debug("completion",
		zap.String("provider", res.Provider),
		zap.String("model", res.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", res.Elapsed),
	)

	if a.opts.Cache != nil {
		if err := a.opts.Cache.Put(key, resp.Content); err != nil {
			a.log.Warn("cache write failed", zap.Error(err))
		}
	}
	return res
}

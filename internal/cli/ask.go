package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/clihelper/internal/assist"
	"github.com/dshills/clihelper/internal/cache"
	"github.com/dshills/clihelper/internal/config"
	"github.com/dshills/clihelper/internal/history"
	"github.com/dshills/clihelper/internal/keystore"
	"github.com/dshills/clihelper/internal/logging"
	"github.com/dshills/clihelper/internal/output"
	"github.com/dshills/clihelper/internal/prompt"
	"github.com/dshills/clihelper/internal/providers"
	"github.com/dshills/clihelper/internal/redact"
	"github.com/dshills/clihelper/internal/shellsetup"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// askDeps holds the pieces of the ask flow that touch the terminal or the
// network.
type askDeps struct {
	stdinIsTerminal func() bool
	newCompleter    func(provider, model string, opts providers.Options) (providers.Completer, error)
	keyPrompter     func(stderr io.Writer) keystore.Prompter
	confirm         func() shellsetup.Confirm
}

var deps = defaultDeps()

func defaultDeps() askDeps {
	return askDeps{
		stdinIsTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		newCompleter:    providers.New,
		keyPrompter: func(stderr io.Writer) keystore.Prompter {
			return keystore.TerminalPrompter(os.Stdin, stderr)
		},
		confirm: func() shellsetup.Confirm { return shellsetup.ReadlineConfirm(true) },
	}
}

// askRequest is the mode and raw text chosen from stdin and arguments.
type askRequest struct {
	mode    prompt.Mode
	content string
	context string
}

// parseAsk chooses the invocation mode. ok is false when usage should be
// printed instead.
func parseAsk(stdin io.Reader, stdinTTY bool, args []string) (askRequest, bool, error) {
	joined := strings.TrimSpace(strings.Join(args, " "))
	if !stdinTTY && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return askRequest{}, false, err
		}
		if strings.TrimSpace(string(data)) != "" {
			return askRequest{mode: prompt.ModeError, content: string(data), context: joined}, true, nil
		}
	}
	if joined == "" {
		return askRequest{}, false, nil
	}
	return askRequest{mode: prompt.ModeQuery, content: joined}, true, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stdinTTY := deps.stdinIsTerminal()
	req, ok, err := parseAsk(cmd.InOrStdin(), stdinTTY, args)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input: %v\n", err)
	}
	if !ok {
		printUsage(stdout)
		return nil
	}

	cfg := loadAskConfig(stderr)
	log := newLogger(cfg, stderr)
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	log.Debug("ask", zap.String("mode", req.mode.String()), zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))

	if !cfg.Privacy.RedactSecrets {
		fmt.Fprintf(stderr, "Warning: secret redaction is disabled; input is sent to %s unmodified.\n", providers.Label(cfg.Provider))
	}

	ensureShellSetup(stdinTTY, stderr, log)

	var apiKey string
	if providers.NeedsKey(cfg.Provider) {
		key, err := keystore.New(cfg.Provider).Resolve(deps.keyPrompter(stderr), stderr)
		if err != nil {
			return writeAnswer(stdout, stderr, cfg.Format, assist.Failed(cfg.Provider, cfg.Model, err))
		}
		apiKey = key.Value
		log.Debug("api key resolved", zap.String("source", string(key.Source)))
	}

	redactor := redact.Redactor{Disabled: !cfg.Privacy.RedactSecrets}
	reader := &history.Reader{
		Lines:    cfg.HistoryLines,
		Self:     "clihelper",
		Redactor: redactor,
		Logger:   log,
	}

	text := prompt.Build(prompt.Input{
		Mode:    req.mode,
		History: reader.Context(ctx),
		Content: redactor.Sanitize(req.content),
		Context: redactor.Sanitize(req.context),
	})

	if flagDebug {
		fmt.Fprintf(stderr, "--- prompt ---\n%s\n--- end prompt ---\n", text)
	}
	if req.mode == prompt.ModeQuery && cfg.Format != "json" {
		fmt.Fprintln(stdout, "\n🔍 Analyzing your query with recent command context...")
	}

	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn("cache unavailable", zap.Error(err))
		c = nil
	} else {
		defer c.Close()
	}

	completer, err := deps.newCompleter(cfg.Provider, cfg.Model, providers.Options{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
		Retries: cfg.Retries,
	})
	if err != nil {
		return writeAnswer(stdout, stderr, cfg.Format, assist.Failed(cfg.Provider, cfg.Model, err))
	}

	res := assist.New(completer, assist.Options{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout(),
		RunID:       runID,
		Cache:       c,
		Logger:      log,
	}).Invoke(ctx, text)

	return writeAnswer(stdout, stderr, cfg.Format, res)
}

// loadAskConfig never fails: problems are reported and defaults used, so
// the ask path always reaches its answer.
func loadAskConfig(stderr io.Writer) config.Config {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v; using defaults\n", err)
		cfg = config.Default()
		cfg.Model = providers.DefaultModel(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		def := config.Default()
		if cfg.Format != "text" && cfg.Format != "json" {
			cfg.Format = def.Format
		}
		if cfg.MaxTokens <= 0 {
			cfg.MaxTokens = def.MaxTokens
		}
		if cfg.HistoryLines < 0 {
			cfg.HistoryLines = def.HistoryLines
		}
		if cfg.Retries < 0 {
			cfg.Retries = def.Retries
		}
	}
	return cfg
}

func newLogger(cfg config.Config, stderr io.Writer) *zap.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	if flagDebug {
		level = zapcore.DebugLevel
	}
	return logging.New(level, stderr)
}

// ensureShellSetup offers the history-flush snippet once. The offer needs a
// terminal on stdin; piped runs defer it to the next interactive run.
func ensureShellSetup(stdinTTY bool, stderr io.Writer, log *zap.Logger) {
	setup, err := shellsetup.New(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Could not check shell setup: %v\n", err)
		return
	}
	var confirm shellsetup.Confirm
	if stdinTTY {
		confirm = deps.confirm()
	}
	if err := setup.Ensure(confirm); err != nil {
		fmt.Fprintf(stderr, "Could not configure shell history: %v\n", err)
		return
	}
	log.Debug("shell setup checked", zap.String("rc", setup.RCPath))
}

func writeAnswer(stdout, stderr io.Writer, format string, res assist.Result) error {
	if err := output.WriteResult(stdout, format, &res); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
	}
	return nil
}

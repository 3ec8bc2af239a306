package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes. Every ask path exits 0; only admin subcommands use the others.
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Root flags
var (
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagNoCache      bool
	flagNoRedact     bool
	flagHistoryLines int
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "clihelper [question...]",
	Short: "Instant command-line help",
	Long: `clihelper explains failing shell commands and answers command-line questions.

Pipe a failing command's output into it, or ask a question directly:

  ls --fake-flag 2>&1 | clihelper
  clihelper 'how do I find large files?'

Secrets are redacted before anything leaves your machine.`,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runAsk,
}

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) int {
	args, flagDebug = stripDebug(args)
	exitCode = ExitSuccess

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// stripDebug removes every --debug argument so it may appear anywhere,
// including after the first word of a question.
func stripDebug(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	debug := false
	for _, a := range args {
		if a == "--debug" {
			debug = true
			continue
		}
		out = append(out, a)
	}
	return out, debug
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagHistoryLines > 0 {
		m["historyLines"] = strconv.Itoa(flagHistoryLines)
	}
	if flagNoCache {
		m["cache"] = "off"
	}
	if flagNoRedact {
		m["redact"] = "off"
	}
	if flagDebug {
		m["logLevel"] = "debug"
	}
	return m
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "CLIHelper v%s - Instant command-line help\n", version)
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  clihelper 'how do I find large files?'        # Direct query")
	fmt.Fprintln(w, "  clihelper 'what was that git command?'        # Ask about recent commands")
	fmt.Fprintln(w, "  command_that_fails 2>&1 | clihelper           # Analyze error")
	fmt.Fprintln(w, "  command_that_fails 2>&1 | clihelper 'context' # Analyze with context")
	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  clihelper 'how to compress a directory'")
	fmt.Fprintln(w, "  clihelper 'explain the last command'")
	fmt.Fprintln(w, "  ls --fake-flag 2>&1 | clihelper")
	fmt.Fprintln(w, "\nRun 'clihelper --help' for flags and subcommands.")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print clihelper version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clihelper version %s\n", version)
	},
}

func init() {
	// Flags end at the first word of a question so it may contain dashes.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	rootCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Skip the response cache")
	rootCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	rootCmd.Flags().IntVar(&flagHistoryLines, "history-lines", 0, "Number of recent shell commands to include")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Print the assembled prompt to stderr before sending it")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(redactCmd)
	rootCmd.AddCommand(versionCmd)
}

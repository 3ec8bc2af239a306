// Package cli wires together the Cobra command tree for the clihelper binary.
//
// The root command is the ask flow: it reads piped error output or a
// question from the arguments, gathers redacted shell history, builds the
// prompt and prints the answer. It always exits 0, printing API failures in
// place of an answer. Subcommands (config, cache, models, key, shell,
// redact, version) manage local state and use non-zero exit codes on
// failure.
package cli

package cli

import (
	"fmt"
	"io"

	"github.com/dshills/clihelper/internal/redact"
	"github.com/spf13/cobra"
)

var flagRedactRules bool

var redactCmd = &cobra.Command{
	Use:   "redact",
	Short: "Print stdin with secrets redacted",
	Long:  "Read text on stdin and print it exactly as clihelper would send it, with secrets replaced.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if flagRedactRules {
			for i, r := range redact.Rules() {
				fmt.Fprintf(w, "%2d  %s\n", i+1, r.Name)
			}
			return nil
		}

		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading stdin: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprint(w, redact.Sanitize(string(data)))
		return nil
	},
}

func init() {
	redactCmd.Flags().BoolVar(&flagRedactRules, "rules", false, "List redaction rules in the order they are applied")
}

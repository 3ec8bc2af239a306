package cli

import (
	"fmt"

	"github.com/dshills/clihelper/internal/shellsetup"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage immediate shell history flushing",
	Long: `clihelper reads your shell history file to see what you just ran.
Shells normally write history only on exit; "shell install" adds a small
section to ~/.bashrc or ~/.zshrc that writes each command as it runs.`,
}

var shellInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Add the history flush section to your shell startup file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setup, err := shellsetup.New(cmd.ErrOrStderr())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if err := setup.Install(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed history flush for %s in %s\n", setup.Shell, setup.RCPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Restart your shell or run: source %s\n", setup.RCPath)
		return nil
	},
}

var shellUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the history flush section",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setup, err := shellsetup.New(cmd.ErrOrStderr())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		found, err := setup.Uninstall()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if !found {
			fmt.Fprintf(cmd.OutOrStdout(), "No clihelper section found in %s\n", setup.RCPath)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed clihelper section from %s\n", setup.RCPath)
		return nil
	},
}

var shellStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether history flushing is installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setup, err := shellsetup.New(cmd.ErrOrStderr())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		st, err := setup.Status()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		state := string(st.State)
		if state == "" {
			state = "not asked yet"
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Shell:     %s\n", st.Shell)
		fmt.Fprintf(w, "Startup:   %s\n", st.RCPath)
		fmt.Fprintf(w, "Installed: %t\n", st.Installed)
		fmt.Fprintf(w, "First run: %s\n", state)
		return nil
	},
}

func init() {
	shellCmd.AddCommand(shellInstallCmd)
	shellCmd.AddCommand(shellUninstallCmd)
	shellCmd.AddCommand(shellStatusCmd)
}

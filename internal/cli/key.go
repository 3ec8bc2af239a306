package cli

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/dshills/clihelper/internal/config"
	"github.com/dshills/clihelper/internal/keystore"
	"github.com/dshills/clihelper/internal/providers"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored API key",
}

// keyStore returns the store for --provider or the configured provider.
func keyStore() *keystore.Store {
	provider := flagProvider
	if provider == "" {
		if cfg, err := config.Load(nil); err == nil {
			provider = cfg.Provider
		} else {
			provider = config.Default().Provider
		}
	}
	return keystore.New(provider)
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Prompt for an API key and save it",
	Long:  "Prompt for an API key and save it with owner-only permissions. A key piped on stdin is read without prompting.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := keyStore()
		var ask keystore.Prompter
		if deps.stdinIsTerminal() {
			ask = deps.keyPrompter(cmd.ErrOrStderr())
		} else {
			ask = keystore.ReaderPrompter(cmd.InOrStdin())
		}
		if ask == nil {
			return errors.New("no terminal available to read the key")
		}

		value, err := ask("Enter your API key: ")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading key: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if value == "" {
			return errors.New("empty key; nothing saved")
		}

		path, err := store.Save(value)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error saving key: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Key saved to %s\n", path)
		return nil
	},
}

var keyPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the key file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := keyStore().FilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored key file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := keyStore()
		removed, err := store.Clear()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		path, _ := store.FilePath()
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "No key file at %s\n", path)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
		for _, name := range providers.KeyEnvVars(store.Provider) {
			if os.Getenv(name) != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: %s is still set in the environment.\n", name)
			}
		}
		return nil
	},
}

func init() {
	keyCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "Provider the key belongs to")
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyPathCmd)
	keyCmd.AddCommand(keyClearCmd)
}

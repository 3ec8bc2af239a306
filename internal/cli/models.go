package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/clihelper/internal/config"
	"github.com/dshills/clihelper/internal/keystore"
	"github.com/dshills/clihelper/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "anthropic",
		Models: []string{
			"claude-3-haiku-20240307",
			"claude-3-5-haiku-latest",
			"claude-sonnet-4-5",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4o-mini",
			"gpt-4o",
			"gpt-4.1-mini",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.0-flash",
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.2",
			"llama3.1",
			"qwen2.5-coder",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known providers and models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, info := range knownModels {
			fmt.Fprintf(w, "%s:\n", info.Provider)
			def := providers.DefaultModel(info.Provider)
			for _, m := range info.Models {
				if m == def {
					fmt.Fprintf(w, "  - %s (default)\n", m)
					continue
				}
				fmt.Fprintf(w, "  - %s\n", m)
			}
			fmt.Fprintln(w)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

		fmt.Fprintf(out, "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

		opts := providers.Options{BaseURL: cfg.BaseURL, Timeout: 30 * time.Second}
		if providers.NeedsKey(cfg.Provider) {
			key, err := keystore.New(cfg.Provider).Lookup()
			if err != nil {
				fmt.Fprintf(errOut, "FAIL: %v\n", err)
				exitCode = ExitAuthError
				return nil
			}
			fmt.Fprintf(out, "Key: found in %s %s\n", key.Source, key.Origin)
			opts.APIKey = key.Value
		}

		p, err := deps.newCompleter(cfg.Provider, cfg.Model, opts)
		if err != nil {
			fmt.Fprintf(errOut, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		_, err = p.Complete(ctx, providers.CompletionRequest{
			SystemPrompt: "Respond with exactly: ok",
			Prompt:       "ping",
			MaxTokens:    10,
		})
		if err != nil {
			fmt.Fprintf(errOut, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s is configured and responding\n", cfg.Provider)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}

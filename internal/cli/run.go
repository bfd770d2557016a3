package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"azor/internal/app"
	"azor/internal/config"
	"azor/internal/conversation"
	"azor/internal/llm"
)

func newRunCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send the conversation and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExchange(cmd, st)
		},
	}
	addLLMFlags(cmd.Flags())
	return cmd
}

func runExchange(cmd *cobra.Command, st *state) error {
	cfg := st.config.LLM
	budget := cfg.ThinkingBudget
	settings := app.Settings{
		CredentialEnv:  cfg.CredentialEnv,
		Model:          cfg.Model,
		ThinkingBudget: &budget,
		Timeout:        cfg.Timeout,
	}
	newClient := func(ctx context.Context, token string) (llm.Client, error) {
		return llm.New(ctx, llm.Config{
			Backend: cfg.Backend,
			BaseURL: cfg.URL,
			Token:   token,
			Model:   cfg.Model,
		})
	}
	return app.Run(cmd.Context(), settings, newClient, app.Output{
		Out:    cmd.OutOrStdout(),
		Logger: st.logger,
	})
}

func newRequestCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Print the request that run would send, without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			budget := st.config.LLM.ThinkingBudget
			req := conversation.Build(conversation.Options{
				Model:          st.config.LLM.Model,
				ThinkingBudget: &budget,
			})
			data, err := json.MarshalIndent(req, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal request: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	d := config.Default()
	cmd.Flags().String("model", d.LLM.Model, "override model name")
	cmd.Flags().Int32("thinking-budget", d.LLM.ThinkingBudget, "thinking budget, -1 for dynamic")
	return cmd
}

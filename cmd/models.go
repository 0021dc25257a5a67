package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriChat/internal/chatapi"
	"github.com/Rorical/RoriChat/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models [model]",
	Short: "List the backend's models, or check one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := newLogger(cfg, "")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client := chatapi.NewClient(chatEndpoint(cfg),
			chatapi.WithTimeout(cfg.GetTimeout()),
			chatapi.WithLogger(logger),
		)
		ctx := context.Background()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			available, err := client.ModelAvailable(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to check model: %s", chatapi.Classify(err))
			}
			fmt.Fprintf(out, "%s: available=%t\n", args[0], available)
			return nil
		}

		health, err := client.Health(ctx)
		if err != nil {
			return fmt.Errorf("backend at %s is not reachable: %s", client.Endpoint(), chatapi.Classify(err))
		}
		models, err := client.Models(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %s", chatapi.Classify(err))
		}

		fmt.Fprintf(out, "Backend: %s (%s)\n\n", client.Endpoint(), health)
		fmt.Fprintln(out, "Models:")
		for _, model := range models {
			marker := ""
			if model == cfg.GetModel() {
				marker = " (default)"
			}
			fmt.Fprintf(out, "  %s%s\n", model, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

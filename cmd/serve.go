package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/config"
	"github.com/Rorical/RoriChat/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a development chat backend",
	Long: `Run a chat backend implementing the API the chat app talks to. Replies come
from the OpenAI-compatible API configured in the active profile (base_url and
api_key, or RORICHAT_API_KEY).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cfg.IsValid() {
			return fmt.Errorf("profile '%s' has no API key; set it with 'rorichat profile edit' or RORICHAT_API_KEY", cfg.ActiveProfile)
		}

		logger, err := newLogger(cfg, "")
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		settings := cfg.ServerSettings()
		addr := settings.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.NewOpenAICompleter(cfg.GetAPIKey(), cfg.GetBaseURL()), server.Options{
			DefaultModel: cfg.GetModel(),
			Models:       cfg.GetModels(),
			MaxRetries:   settings.MaxRetries,
			RateLimit:    settings.RateLimit,
			Burst:        settings.Burst,
			Logger:       logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting chat server",
			zap.String("profile", cfg.ActiveProfile),
			zap.String("upstream", cfg.GetBaseURL()),
			zap.Strings("models", cfg.GetModels()))
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

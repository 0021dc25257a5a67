package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/app"
	"github.com/Rorical/RoriChat/internal/config"
	"github.com/Rorical/RoriChat/internal/logging"
)

var (
	logLevel      string
	endpoint      string
	reducedMotion bool
)

var rootCmd = &cobra.Command{
	Use:   "rorichat",
	Short: "A terminal chat widget for a chat backend",
	Long:  `RoriChat is a terminal chat client that talks to a simple JSON chat API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the chat application
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return runChat(cmd, cfg)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

// runChat starts the TUI with the active profile. The TUI owns the terminal,
// so it logs to a file.
func runChat(cmd *cobra.Command, cfg *config.Config) error {
	logFile, err := logging.DefaultLogFile()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, logFile)
	if err != nil {
		return err
	}

	var opts []app.Option
	if endpoint != "" {
		opts = append(opts, app.WithEndpoint(endpoint))
	}
	if cmd.Flags().Changed("reduced-motion") {
		opts = append(opts, app.WithReducedMotion(reducedMotion))
	}

	application, err := app.NewApplication(cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}

// newLogger builds the logger for a command. An empty file logs to stderr.
func newLogger(cfg *config.Config, file string) (*zap.Logger, error) {
	level := cfg.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(logging.Options{Level: level, File: file})
}

// chatEndpoint is the --endpoint flag or the profile's endpoint.
func chatEndpoint(cfg *config.Config) string {
	if endpoint != "" {
		return endpoint
	}
	return cfg.GetEndpoint()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "chat backend URL (overrides the profile)")
	rootCmd.PersistentFlags().BoolVar(&reducedMotion, "reduced-motion", false, "show replies at once instead of typing them out")

	// Add subcommands
	rootCmd.AddCommand(profileCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/chatapi"
	"github.com/Rorical/RoriChat/internal/config"
	"github.com/Rorical/RoriChat/internal/core"
)

var sendModel string

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
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

		message, err := core.ValidateMessage(strings.Join(args, " "))
		if err != nil {
			if errors.Is(err, core.ErrMessageTooLong) {
				return errors.New(core.MsgTooLong)
			}
			return err
		}

		model := sendModel
		if model == "" {
			model = cfg.GetModel()
		}

		client := chatapi.NewClient(chatEndpoint(cfg),
			chatapi.WithTimeout(cfg.GetTimeout()),
			chatapi.WithLogger(logger),
		)
		resp, err := client.Chat(context.Background(), message, model)
		if err != nil {
			logger.Debug("send failed", zap.Error(err))
			return errors.New(chatapi.Classify(err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendModel, "model", "m", "", "model to use (default from profile)")
	rootCmd.AddCommand(sendCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriChat/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name]",
	Short: "Switch to a profile and start the chat app",
	Long:  `Switch to the specified profile and immediately start the chat application.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileName := args[0]

		// Load config
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Switch to the profile
		if err := cfg.UseProfile(profileName); err != nil {
			return err
		}

		// Save config with new active profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		// Start the chat application
		return runChat(cmd, cfg)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}

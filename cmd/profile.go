package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriChat/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage chat profiles",
	Long:  `Manage profiles for different chat backends and upstream providers.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Endpoint: %s\n", orDefault(profile.Endpoint, config.DefaultEndpoint))
			fmt.Printf("    Model: %s\n", orDefault(profile.Model, config.DefaultModel))
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := args[0]
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Endpoint: %s\n", orDefault(profile.Endpoint, config.DefaultEndpoint))
		fmt.Printf("Model: %s\n", orDefault(profile.Model, config.DefaultModel))
		fmt.Printf("Models: %s\n", strings.Join(profile.Models, ", "))
		fmt.Printf("Reduced motion: %t\n", profile.ReducedMotion)
		fmt.Printf("Timeout: %ds\n", profile.TimeoutSeconds)
		fmt.Printf("Upstream Base URL: %s\n", orDefault(profile.BaseURL, config.DefaultBaseURL))
		hasKey := "Not set"
		if profile.APIKey != "" {
			hasKey = "Set (hidden for security)"
		}
		fmt.Printf("Upstream API Key: %s\n", hasKey)
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label:    "Profile name",
				Validate: notBlank,
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		// Add profile to config
		cfg.Profiles[profileName] = profile

		// Save config
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := selectProfile(cfg, args, "Select profile to edit", "")

		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}

		// Update profile in config
		cfg.Profiles[profileName] = profile

		// Save config
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := selectProfile(cfg, args, "Select profile to delete", "")

		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		// Confirm deletion
		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		// Delete the profile
		delete(cfg.Profiles, profileName)

		// If this was the last profile, create a new default one
		if len(cfg.Profiles) == 0 {
			cfg.Profiles["default"] = config.DefaultProfile()
		}
		if cfg.ActiveProfile == profileName {
			cfg.ActiveProfile = cfg.ProfileNames()[0]
		}

		// Save config
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if len(args) == 0 && len(cfg.Profiles) < 2 {
			fmt.Println("No other profiles available to switch to")
			return
		}
		profileName := selectProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)

		if err := cfg.UseProfile(profileName); err != nil {
			log.Fatalf("%v", err)
		}

		// Save config
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

// selectProfile returns the profile named in args, or lets the user pick one
// other than exclude.
func selectProfile(cfg *config.Config, args []string, label, exclude string) string {
	if len(args) > 0 {
		return args[0]
	}

	profileNames := make([]string, 0, len(cfg.Profiles))
	for _, name := range cfg.ProfileNames() {
		if name != exclude {
			profileNames = append(profileNames, name)
		}
	}
	if len(profileNames) == 0 {
		log.Fatalf("No profiles available")
	}

	prompt := promptui.Select{
		Label: label,
		Items: profileNames,
	}
	_, profileName, err := prompt.Run()
	if err != nil {
		log.Fatalf("Selection failed: %v", err)
	}
	return profileName
}

// promptProfile asks for every profile field, defaulting to current values.
func promptProfile(profile config.Profile) (config.Profile, error) {
	var err error

	endpointPrompt := promptui.Prompt{
		Label:   "Chat endpoint",
		Default: orDefault(profile.Endpoint, config.DefaultEndpoint),
	}
	if profile.Endpoint, err = endpointPrompt.Run(); err != nil {
		return profile, err
	}

	modelPrompt := promptui.Prompt{
		Label:    "Default model",
		Default:  orDefault(profile.Model, config.DefaultModel),
		Validate: notBlank,
	}
	if profile.Model, err = modelPrompt.Run(); err != nil {
		return profile, err
	}

	modelsPrompt := promptui.Prompt{
		Label:   "Models (comma separated, empty for defaults)",
		Default: strings.Join(profile.Models, ","),
	}
	models, err := modelsPrompt.Run()
	if err != nil {
		return profile, err
	}
	profile.Models = splitList(models)

	motionPrompt := promptui.Select{
		Label: "Reduced motion",
		Items: []string{"no", "yes"},
	}
	if profile.ReducedMotion {
		motionPrompt.CursorPos = 1
	}
	_, motion, err := motionPrompt.Run()
	if err != nil {
		return profile, err
	}
	profile.ReducedMotion = motion == "yes"

	timeoutPrompt := promptui.Prompt{
		Label:   "Request timeout in seconds (0 for default)",
		Default: strconv.Itoa(profile.TimeoutSeconds),
		Validate: func(s string) error {
			if n, err := strconv.Atoi(s); err != nil || n < 0 {
				return fmt.Errorf("enter a non-negative number")
			}
			return nil
		},
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		return profile, err
	}
	profile.TimeoutSeconds, _ = strconv.Atoi(timeout)

	// Upstream settings are only used by `rorichat serve`.
	apiKeyPrompt := promptui.Prompt{
		Label:   "Upstream API Key (serve only, optional)",
		Default: profile.APIKey,
		Mask:    '*',
	}
	if profile.APIKey, err = apiKeyPrompt.Run(); err != nil {
		return profile, err
	}

	baseURLPrompt := promptui.Prompt{
		Label:   "Upstream Base URL (serve only)",
		Default: orDefault(profile.BaseURL, config.DefaultBaseURL),
	}
	if profile.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return profile, err
	}

	return profile, nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func init() {
	// Add subcommands to profile
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}

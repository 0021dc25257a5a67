package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

const (
	DefaultEndpoint   = "http://localhost:8080"
	DefaultModel      = "qwen/qwen3-coder:free"
	DefaultBaseURL    = "https://openrouter.ai/api/v1"
	DefaultServerAddr = ":8080"
	DefaultLogLevel   = "info"

	defaultTimeoutSeconds = 30
	defaultRateLimit      = 2.0
	defaultBurst          = 5
	defaultMaxRetries     = 3
)

// DefaultModels is offered when a profile lists none.
var DefaultModels = []string{
	"qwen/qwen3-coder:free",
	"deepseek/deepseek-chat-v3-0324:free",
	"google/gemini-2.0-flash-exp:free",
	"meta-llama/llama-3.3-70b-instruct:free",
}

// Profile configures one backend. Endpoint is the chat backend the widget
// talks to; APIKey and BaseURL configure the upstream used by `serve`.
type Profile struct {
	Endpoint       string   `json:"endpoint,omitempty"`
	Model          string   `json:"model"`
	Models         []string `json:"models,omitempty"`
	ReducedMotion  bool     `json:"reduced_motion,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
	APIKey         string   `json:"api_key,omitempty"`
	BaseURL        string   `json:"base_url,omitempty"`
}

type ServerConfig struct {
	Addr       string  `json:"addr,omitempty"`
	RateLimit  float64 `json:"rate_limit,omitempty"` // requests per second
	Burst      int     `json:"burst,omitempty"`
	MaxRetries int     `json:"max_retries,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	LogLevel       string             `json:"log_level,omitempty"`
	Server         ServerConfig       `json:"server"`
	currentProfile *Profile
}

// DefaultProfile is written for a fresh install.
func DefaultProfile() Profile {
	return Profile{
		Endpoint: DefaultEndpoint,
		Model:    DefaultModel,
		Models:   slices.Clone(DefaultModels),
		BaseURL:  DefaultBaseURL,
	}
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Load existing config or create default
	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// IsValid reports whether the active profile can drive `serve`.
func (c *Config) IsValid() bool {
	return c.GetAPIKey() != ""
}

// Current returns the active profile.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfile()
	}
	return *c.currentProfile
}

// UseProfile makes name the active profile for this process.
func (c *Config) UseProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	return c.setCurrentProfile()
}

func (c *Config) GetEndpoint() string {
	if c.currentProfile == nil || c.currentProfile.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.currentProfile.Endpoint
}

// GetAPIKey prefers RORICHAT_API_KEY over the profile.
func (c *Config) GetAPIKey() string {
	if key := os.Getenv("RORICHAT_API_KEY"); key != "" {
		return key
	}
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	if c.currentProfile == nil || c.currentProfile.Model == "" {
		return DefaultModel
	}
	return c.currentProfile.Model
}

// GetModels returns the profile's model list, always including its default
// model.
func (c *Config) GetModels() []string {
	var models []string
	if c.currentProfile != nil {
		models = slices.Clone(c.currentProfile.Models)
	}
	if len(models) == 0 {
		models = slices.Clone(DefaultModels)
	}
	if model := c.GetModel(); !slices.Contains(models, model) {
		models = append([]string{model}, models...)
	}
	return models
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil || c.currentProfile.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetTimeout() time.Duration {
	if c.currentProfile == nil || c.currentProfile.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.currentProfile.TimeoutSeconds) * time.Second
}

// ReducedMotion reports the reduced-motion preference. RORICHAT_REDUCED_MOTION
// overrides the profile when it parses as a boolean.
func (c *Config) ReducedMotion() bool {
	if v := os.Getenv("RORICHAT_REDUCED_MOTION"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			return enabled
		}
	}
	return c.currentProfile != nil && c.currentProfile.ReducedMotion
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// ServerSettings returns the server section with defaults filled in.
func (c *Config) ServerSettings() ServerConfig {
	s := c.Server
	if s.Addr == "" {
		s.Addr = DefaultServerAddr
	}
	if s.RateLimit <= 0 {
		s.RateLimit = defaultRateLimit
	}
	if s.Burst <= 0 {
		s.Burst = defaultBurst
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = defaultMaxRetries
	}
	return s
}

// Dir is the directory holding the config file and the TUI log.
func Dir() (string, error) {
	var configDir string

	// Use RORICHAT_HOME if set, otherwise use user's home directory
	if home := os.Getenv("RORICHAT_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".rorichat"), nil
}

func getConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	// Read existing config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": DefaultProfile(),
		},
		ActiveProfile: "default",
		LogLevel:      DefaultLogLevel,
	}

	// Save default config to file
	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order
		names := make([]string, 0, len(c.Profiles))
		for name := range c.Profiles {
			names = append(names, name)
		}
		slices.Sort(names)
		c.ActiveProfile = names[0]
		profile = c.Profiles[names[0]]
	}

	c.currentProfile = &profile
	return nil
}

// ProfileNames returns the profile names sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pac-william/mercado/internal/storefront/suggestion"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

const (
	// ConfigVersion is written by "config create".
	ConfigVersion = "0.2.0"
	// supportedConfigVersions are the file format versions this CLI can read.
	supportedConfigVersions = ">= 0.1.0, < 1.0.0"

	DefaultTimeout = 2 * time.Minute
)

// Config is the CLI configuration: where the backend lives and the session token.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version" validate:"required"`
	// ServerURL is the base URL of the storefront API
	ServerURL string `yaml:"server_url" validate:"required,url"`
	// Token is the bearer token obtained with "mercado login"
	Token string `yaml:"token,omitempty"`
	// TokenExpiry is when Token expires, RFC3339
	TokenExpiry string `yaml:"token_expiry,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	// Timeout bounds each backend call, e.g. "90s"
	Timeout string `yaml:"timeout,omitempty"`
	// CaptionInterval is how often "suggest" advances its caption, e.g. "2.5s"
	CaptionInterval string `yaml:"caption_interval,omitempty"`
}

// EnvFile sits next to the config file. Its MERCADO_* entries fill settings the
// config file leaves empty; variables already in the environment win over it.
const EnvFile = ".env"

var envFields = map[string]func(*Config) *string{
	"MERCADO_SERVER_URL":       func(c *Config) *string { return &c.ServerURL },
	"MERCADO_TOKEN":            func(c *Config) *string { return &c.Token },
	"MERCADO_TIMEOUT":          func(c *Config) *string { return &c.Timeout },
	"MERCADO_CAPTION_INTERVAL": func(c *Config) *string { return &c.CaptionInterval },
}

var config *Config

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/mercado on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "mercado", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	c, err := ReadConfig(file)
	if err != nil {
		return err
	}
	config = c
	return nil
}

// ReadConfig reads and validates a config file without making it current.
func ReadConfig(file string) (*Config, error) {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	if err := c.applyEnvDefaults(filepath.Join(filepath.Dir(file), EnvFile)); err != nil {
		return nil, err
	}
	if err := c.ValidateConfig(); err != nil {
		return nil, err
	}
	c.ServerURL = MorphServer(c.ServerURL)
	return &c, nil
}

func (cfg *Config) applyEnvDefaults(envFile string) error {
	vals, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to read %s: %w", envFile, err)
	}
	for key, field := range envFields {
		v, ok := os.LookupEnv(key)
		if !ok {
			v = vals[key]
		}
		if p := field(cfg); *p == "" && v != "" {
			*p = v
		}
	}
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the configuration to file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks required fields, the file format version and durations.
func (cfg *Config) ValidateConfig() error {
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q check", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	v, err := semver.NewVersion(cfg.Version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", cfg.Version, err)
	}
	constraint, err := semver.NewConstraint(supportedConfigVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("config version %s is not supported; recreate it with \"mercado config create\"", cfg.Version)
	}

	if !strings.HasPrefix(cfg.ServerURL, "http://") && !strings.HasPrefix(cfg.ServerURL, "https://") {
		return errors.New("server_url must start with http:// or https://")
	}
	for name, d := range map[string]string{"timeout": cfg.Timeout, "caption_interval": cfg.CaptionInterval} {
		if d == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d); err != nil || parsed <= 0 {
			return fmt.Errorf("invalid %s %q", name, d)
		}
	}
	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}
	server = strings.TrimRight(server, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}
	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// GetTimeout returns the per-call timeout.
func (cfg *Config) GetTimeout() time.Duration {
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// GetCaptionInterval returns the suggestion caption cadence.
func (cfg *Config) GetCaptionInterval() time.Duration {
	if d, err := time.ParseDuration(cfg.CaptionInterval); err == nil && d > 0 {
		return d
	}
	return suggestion.DefaultInterval
}

// GetToken returns the stored bearer token
func (cfg *Config) GetToken() string {
	return cfg.Token
}

// GetTokenExpiry returns the token expiry time from the configuration
func (cfg *Config) GetTokenExpiry() time.Time {
	if cfg.TokenExpiry == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, cfg.TokenExpiry)
	if err != nil {
		return time.Time{}
	}
	return t
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the server address and timeouts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Help()
		return nil
	},
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a config file pointing at a server",
	Long: `Create a config file pointing at a server. Any stored session is discarded.

Examples:
  mercado config create --server http://localhost:8080/api
  mercado config create --server https://mercado.example.com/api --timeout 90s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		timeout, _ := cmd.Flags().GetString("timeout")
		interval, _ := cmd.Flags().GetString("caption-interval")
		return createConfig(cmd, server, timeout, interval)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ReadConfig(configFile)
		if err != nil {
			return err
		}
		return showConfig(cmd, cfg)
	},
}

func init() {
	configCreateCmd.Flags().String("server", "", "Server base URL (e.g., http://localhost:8080/api)")
	configCreateCmd.Flags().String("timeout", "", "Per-call timeout (e.g., 90s)")
	configCreateCmd.Flags().String("caption-interval", "", "Caption cadence for suggest (e.g., 2.5s)")
	configCreateCmd.MarkFlagRequired("server")

	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// createConfig writes a fresh config file
func createConfig(cmd *cobra.Command, server, timeout, interval string) error {
	cfg := &Config{
		Version:         ConfigVersion,
		ServerURL:       MorphServer(server),
		Timeout:         timeout,
		CaptionInterval: interval,
	}
	if err := cfg.ValidateConfig(); err != nil {
		return err
	}
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		printJSON(out, map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configFile,
		})
	} else {
		fmt.Fprintf(out, "Server configured: %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "Config file: %s\n", configFile)
	}
	return nil
}

func showConfig(cmd *cobra.Command, cfg *Config) error {
	out := cmd.OutOrStdout()
	signedIn := cfg.Token != ""
	if jsonOutput {
		printJSON(out, map[string]any{
			"version":          cfg.Version,
			"server":           cfg.ServerURL,
			"timeout":          cfg.GetTimeout().String(),
			"caption_interval": cfg.GetCaptionInterval().String(),
			"signed_in":        signedIn,
			"token_expiry":     cfg.TokenExpiry,
		})
		return nil
	}
	fmt.Fprintf(out, "Server: %s\n", cfg.ServerURL)
	fmt.Fprintf(out, "Timeout: %s\n", cfg.GetTimeout())
	fmt.Fprintf(out, "Caption interval: %s\n", cfg.GetCaptionInterval())
	if signedIn {
		fmt.Fprintf(out, "Signed in, token expires at %s\n", cfg.TokenExpiry)
	} else {
		fmt.Fprintln(out, "Not signed in")
	}
	return nil
}

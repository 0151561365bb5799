// Package config loads ~/.cvbuilder/config.yaml, creating it with defaults
// on first run. CVBUILDER_* environment variables override file values.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	StoreDriver  string `mapstructure:"store_driver"` // sqlite, postgres
	DatabaseURL  string `mapstructure:"database_url"`
	DataDir      string `mapstructure:"data_dir"`
	ExportDir    string `mapstructure:"export_dir"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	AIProvider   string `mapstructure:"ai_provider"` // openai, anthropic, gemini, ollama, lmstudio
	DefaultModel string `mapstructure:"default_model"`
	OllamaURL    string `mapstructure:"ollama_url"`
	LMStudioURL  string `mapstructure:"lmstudio_url"`
	OpenAIKey    string `mapstructure:"openai_key"`
	AnthropicKey string `mapstructure:"anthropic_key"`
	GeminiKey    string `mapstructure:"gemini_key"`
	JWTSecret    string `mapstructure:"jwt_secret"`
	JWTIssuer    string `mapstructure:"jwt_issuer"`
	SessionToken string `mapstructure:"session_token"`
	ServerAddr   string `mapstructure:"server_addr"`
	ChromePath   string `mapstructure:"chrome_path"`

	v    *viper.Viper
	path string
	dir  string
}

// secretKeys are never printed by `config show`
var secretKeys = []string{"openai_key", "anthropic_key", "gemini_key", "jwt_secret", "session_token", "database_url"}

var defaults = map[string]string{
	"store_driver":  "sqlite",
	"database_url":  "",
	"data_dir":      "",
	"export_dir":    ".",
	"log_level":     "warn",
	"log_format":    "text",
	"ai_provider":   "ollama",
	"default_model": "llama3.2",
	"ollama_url":    "http://localhost:11434",
	"lmstudio_url":  "http://localhost:1234",
	"openai_key":    "",
	"anthropic_key": "",
	"gemini_key":    "",
	"jwt_secret":    "",
	"jwt_issuer":    "cvbuilder",
	"session_token": "",
	"server_addr":   ":8080",
	"chrome_path":   "",
}

// Keys lists every configuration key, sorted
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsSecret reports whether the value of key must be masked when shown
func IsSecret(key string) bool {
	return slices.Contains(secretKeys, key)
}

// DefaultDir is ~/.cvbuilder, or $CVBUILDER_HOME when set
func DefaultDir() (string, error) {
	if dir := os.Getenv("CVBUILDER_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cvbuilder"), nil
}

// Load reads dir/config.yaml, creating it with defaults when missing
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := createDefaultConfig(configFile); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CVBUILDER")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{v: v, path: configFile, dir: dir}
	if err := cfg.reload(); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) reload() error {
	if err := c.v.Unmarshal(c); err != nil {
		return err
	}
	if c.DataDir == "" {
		c.DataDir = c.dir
	}
	return nil
}

func createDefaultConfig(path string) error {
	secret, err := randomSecret()
	if err != nil {
		return err
	}

	defaultConfig := `# cvbuilder configuration
# Store: sqlite (local file in data_dir) or postgres (set database_url)
store_driver: sqlite
database_url: ""
data_dir: ""
export_dir: "."

log_level: warn
log_format: text

# AI Provider: openai, anthropic, gemini, ollama, lmstudio
ai_provider: ollama
default_model: llama3.2
ollama_url: http://localhost:11434
lmstudio_url: http://localhost:1234

# API Keys (keep this file secure!)
openai_key: ""
anthropic_key: ""
gemini_key: ""

# Session tokens
jwt_secret: "` + secret + `"
jwt_issuer: cvbuilder
session_token: ""

server_addr: ":8080"
chrome_path: ""
`
	return os.WriteFile(path, []byte(defaultConfig), 0600)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Set updates a configuration value and writes the file
func (c *Config) Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("invalid key %q. Must be one of: %s", key, strings.Join(Keys(), ", "))
	}
	c.v.Set(key, value)
	if err := c.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return c.reload()
}

// Get retrieves a configuration value
func (c *Config) Get(key string) string {
	return c.v.GetString(key)
}

// Path returns the config file location
func (c *Config) Path() string {
	return c.path
}

// DatabasePath is the SQLite file used by the sqlite driver
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "cvbuilder.db")
}

// DraftPath is where the CLI keeps the document being edited
func (c *Config) DraftPath() string {
	return filepath.Join(c.DataDir, "draft.json")
}

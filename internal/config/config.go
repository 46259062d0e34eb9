// Package config loads buddy's settings. Precedence, highest first: command
// line flags, BUDDY_* environment variables (plus ANTHROPIC_API_KEY and
// OPENAI_API_KEY), the buddy.yaml config file, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/buddy/internal/llm"
)

// EnvPrefix prefixes every environment variable buddy reads.
const EnvPrefix = "BUDDY"

// Log configures logging.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the effective configuration.
type Config struct {
	DB              string   `mapstructure:"db" yaml:"db"`
	Provider        string   `mapstructure:"provider" yaml:"provider"`
	Model           string   `mapstructure:"model" yaml:"model"`
	MaxTokens       int64    `mapstructure:"max_tokens" yaml:"max_tokens"`
	AnthropicAPIKey string   `mapstructure:"anthropic_api_key" yaml:"anthropic_api_key"`
	OpenAIAPIKey    string   `mapstructure:"openai_api_key" yaml:"openai_api_key"`
	Fallback        bool     `mapstructure:"fallback" yaml:"fallback"`
	Listen          string   `mapstructure:"listen" yaml:"listen"`
	CacheSize       int      `mapstructure:"cache_size" yaml:"cache_size"`
	CORSOrigins     []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	Log             Log      `mapstructure:"log" yaml:"log"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-" yaml:"-"`
}

// DefaultDir is ~/.buddy.
func DefaultDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".buddy")
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db", filepath.Join(DefaultDir(), "buddy.db"))
	v.SetDefault("provider", llm.ProviderAnthropic)
	v.SetDefault("model", "")
	v.SetDefault("max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("fallback", true)
	v.SetDefault("listen", ":8080")
	v.SetDefault("cache_size", 256)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// New returns a viper instance with defaults, env bindings and config search
// paths set. file, if non-empty, is used instead of searching.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed provider keys are honoured too.
	_ = v.BindEnv("anthropic_api_key", EnvPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("openai_api_key", EnvPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("buddy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}
	return v
}

// BindFlags makes the given flags override every other source. Flags are
// matched to keys by name with dashes turned into underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if key == "log_level" || key == "log_format" {
			key = strings.Replace(key, "_", ".", 1)
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes v into a Config. A missing
// file is not an error when none was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that have a closed set of options.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderStatic:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: cache_size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// LLM returns the completion settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:        c.Provider,
		Model:           c.Model,
		MaxTokens:       c.MaxTokens,
		AnthropicAPIKey: c.AnthropicAPIKey,
		OpenAIAPIKey:    c.OpenAIAPIKey,
	}
}

// Redacted returns a copy with API keys masked.
func (c Config) Redacted() Config {
	c.AnthropicAPIKey = redact(c.AnthropicAPIKey)
	c.OpenAIAPIKey = redact(c.OpenAIAPIKey)
	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}

func redact(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-2:]
	}
}

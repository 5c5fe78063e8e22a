package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ProviderID names one of the supported upstream backends.
type ProviderID string

const (
	OpenAI   ProviderID = "openai"
	Azure    ProviderID = "azure"
	Gemini   ProviderID = "gemini"
	DeepSeek ProviderID = "deepseek"
)

// ProviderIDs lists every provider the gateway knows how to call.
var ProviderIDs = []ProviderID{OpenAI, Azure, Gemini, DeepSeek}

// ErrUnknownProvider indicates a provider id outside ProviderIDs.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrNoActiveProvider indicates no provider was selected.
var ErrNoActiveProvider = errors.New("no active provider configured")

// ParseProviderID normalises a provider selector.
func ParseProviderID(raw string) (ProviderID, error) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(raw)))
	if id == "" {
		return "", ErrNoActiveProvider
	}
	for _, known := range ProviderIDs {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
}

const (
	DefaultPort        = 3000
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultLanguage    = "en"
	DefaultAzureAPIVer = "2024-02-15-preview"
)

// Config represents the application configuration parsed from YAML and the environment.
type Config struct {
	Server         ServerConfig    `yaml:"server"`
	Language       string          `yaml:"language"`
	ActiveProvider string          `yaml:"active_provider"`
	Providers      ProvidersConfig `yaml:"providers"`
	Documents      DocumentsConfig `yaml:"documents"`
	LogLevel       string          `yaml:"log_level"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// ProvidersConfig catalogues configured upstream providers.
type ProvidersConfig struct {
	OpenAI   ProviderConfig `yaml:"openai"`
	Azure    ProviderConfig `yaml:"azure"`
	Gemini   ProviderConfig `yaml:"gemini"`
	DeepSeek ProviderConfig `yaml:"deepseek"`
}

// ProviderConfig captures authentication and model settings for a provider.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	APIVersion  string  `yaml:"api_version"`
}

// DocumentsConfig points at the SQLite file backing the documents API. Empty disables it.
type DocumentsConfig struct {
	Path string `yaml:"path"`
}

// Default returns a configuration with every provider's public defaults filled
// in. Load decodes YAML over it, so an explicit zero in the file is kept.
func Default() Config {
	sampling := func(p ProviderConfig) ProviderConfig {
		p.Temperature = DefaultTemperature
		p.MaxTokens = DefaultMaxTokens
		return p
	}
	return Config{
		Server:   ServerConfig{Port: DefaultPort},
		Language: DefaultLanguage,
		Providers: ProvidersConfig{
			OpenAI:   sampling(ProviderConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"}),
			Azure:    sampling(ProviderConfig{APIVersion: DefaultAzureAPIVer}),
			Gemini:   sampling(ProviderConfig{BaseURL: "https://generativelanguage.googleapis.com/v1beta", Model: "gemini-pro"}),
			DeepSeek: sampling(ProviderConfig{BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"}),
		},
	}
}

// Load reads the optional YAML file, overlays the process environment (after
// loading envFile, if given) and validates the result.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	if envFile != "" {
		// godotenv.Load never overrides variables already present in the process.
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("API_PROVIDER", &c.ActiveProvider)
	str("AI_LANGUAGE", &c.Language)
	str("LOG_LEVEL", &c.LogLevel)
	str("DOCUMENTS_DB", &c.Documents.Path)
	if v, ok := lookup("CORS_ALLOW_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.Server.AllowOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.AllowOrigins = append(c.Server.AllowOrigins, origin)
			}
		}
	}

	str("OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	str("OPENAI_MODEL", &c.Providers.OpenAI.Model)
	str("OPENAI_ENDPOINT", &c.Providers.OpenAI.BaseURL)

	str("AZURE_OPENAI_API_KEY", &c.Providers.Azure.APIKey)
	str("AZURE_OPENAI_ENDPOINT", &c.Providers.Azure.BaseURL)
	str("AZURE_OPENAI_DEPLOYMENT", &c.Providers.Azure.Model)
	str("AZURE_OPENAI_API_VERSION", &c.Providers.Azure.APIVersion)

	str("GEMINI_API_KEY", &c.Providers.Gemini.APIKey)
	str("GEMINI_MODEL", &c.Providers.Gemini.Model)
	str("GEMINI_ENDPOINT", &c.Providers.Gemini.BaseURL)

	str("DEEPSEEK_API_KEY", &c.Providers.DeepSeek.APIKey)
	str("DEEPSEEK_MODEL", &c.Providers.DeepSeek.Model)
	str("DEEPSEEK_ENDPOINT", &c.Providers.DeepSeek.BaseURL)

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("PORT %q is not a number: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) fillDefaults() {
	for _, id := range ProviderIDs {
		p := c.Provider(id)
		if id == Azure && p.APIVersion == "" {
			p.APIVersion = DefaultAzureAPIVer
		}
		p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
}

// Provider returns a pointer to the settings block for id, or nil for unknown ids.
func (c *Config) Provider(id ProviderID) *ProviderConfig {
	switch id {
	case OpenAI:
		return &c.Providers.OpenAI
	case Azure:
		return &c.Providers.Azure
	case Gemini:
		return &c.Providers.Gemini
	case DeepSeek:
		return &c.Providers.DeepSeek
	}
	return nil
}

// Active resolves the active provider selector.
func (c Config) Active() (ProviderID, error) {
	return ParseProviderID(c.ActiveProvider)
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}

	switch strings.ToLower(c.Language) {
	case "", "en", "ja":
	default:
		return fmt.Errorf("language must be one of %q or %q, got %q", "en", "ja", c.Language)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	active, err := c.Active()
	if err != nil {
		return fmt.Errorf("active_provider: %w", err)
	}
	p := c.Provider(active)
	return validateProvider(active, *p)
}

func validateProvider(id ProviderID, provider ProviderConfig) error {
	if strings.TrimSpace(provider.APIKey) == "" {
		return fmt.Errorf("provider %s: api_key must be provided", id)
	}
	if strings.TrimSpace(provider.BaseURL) == "" {
		return fmt.Errorf("provider %s: base_url must be provided", id)
	}
	if strings.TrimSpace(provider.Model) == "" {
		return fmt.Errorf("provider %s: model must be provided", id)
	}
	if provider.Temperature < 0 || provider.Temperature > 2 {
		return fmt.Errorf("provider %s: temperature %.2f out of range [0,2]", id, provider.Temperature)
	}
	if provider.MaxTokens < 0 {
		return fmt.Errorf("provider %s: max_tokens must not be negative", id)
	}
	return nil
}

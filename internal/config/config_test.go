package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnvOverlaysProviderSettings(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"API_PROVIDER":            "Azure",
		"AI_LANGUAGE":             "ja",
		"AZURE_OPENAI_API_KEY":    "az-key",
		"AZURE_OPENAI_ENDPOINT":   "https://example.openai.azure.com/",
		"AZURE_OPENAI_DEPLOYMENT": "writer",
		"PORT":                    "8081",
	}))
	if err != nil {
		t.Fatal(err)
	}
	cfg.fillDefaults()

	active, err := cfg.Active()
	if err != nil || active != Azure {
		t.Fatalf("active=%q err=%v", active, err)
	}
	az := cfg.Provider(Azure)
	if az.APIKey != "az-key" || az.Model != "writer" || az.BaseURL != "https://example.openai.azure.com" {
		t.Fatalf("unexpected azure config: %+v", az)
	}
	if az.APIVersion != DefaultAzureAPIVer || az.Temperature != DefaultTemperature || az.MaxTokens != DefaultMaxTokens {
		t.Fatalf("defaults not applied: %+v", az)
	}
	if cfg.Server.Port != 8081 || cfg.Language != "ja" {
		t.Fatalf("server/language not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(envMap(map[string]string{"PORT": "eighty"})); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestValidateProviderSelection(t *testing.T) {
	cases := []struct {
		name   string
		active string
		want   error
	}{
		{"missing", "", ErrNoActiveProvider},
		{"unknown", "anthropic", ErrUnknownProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.ActiveProvider = tc.active
			err := cfg.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateRequiresAPIKeyForActiveProvider(t *testing.T) {
	cfg := Default()
	cfg.ActiveProvider = "openai"
	cfg.fillDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing api_key error")
	}
	cfg.Providers.OpenAI.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadReadsYAMLAndEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yamlDoc := `
server:
  port: 9090
active_provider: gemini
providers:
  gemini:
    model: gemini-1.5-flash
    temperature: 0.2
`
	if err := os.WriteFile(cfgPath, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("GEMINI_API_KEY=g-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load(cfgPath, envPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	g := cfg.Providers.Gemini
	if g.APIKey != "g-key" || g.Model != "gemini-1.5-flash" || g.Temperature != 0.2 {
		t.Fatalf("unexpected gemini config: %+v", g)
	}
	if g.BaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Fatalf("default base url lost: %q", g.BaseURL)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port=%d", cfg.Server.Port)
	}
}

func TestLoadKeepsExplicitZeroSampling(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yamlDoc := `
active_provider: openai
providers:
  openai:
    api_key: sk-test
    temperature: 0
    max_tokens: 0
  deepseek:
    model: deepseek-reasoner
`
	if err := os.WriteFile(cfgPath, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	o := cfg.Providers.OpenAI
	if o.Temperature != 0 || o.MaxTokens != 0 {
		t.Fatalf("explicit zero overridden: temperature=%v max_tokens=%d", o.Temperature, o.MaxTokens)
	}
	d := cfg.Providers.DeepSeek
	if d.Temperature != DefaultTemperature || d.MaxTokens != DefaultMaxTokens {
		t.Fatalf("defaults lost for unset fields: %+v", d)
	}
}

func TestParseLogLevel(t *testing.T) {
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	for _, ok := range []string{"", "debug", "INFO", "warn", "error"} {
		if _, err := ParseLogLevel(ok); err != nil {
			t.Fatalf("level %q: %v", ok, err)
		}
	}
}

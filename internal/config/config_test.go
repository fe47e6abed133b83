package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LMS_BASE_URL", "https://lms.example.com")
	t.Setenv("LMS_EMAIL", "merchant@example.com")
	t.Setenv("LMS_PASSWORD", "secret")
	t.Setenv("LMS_MERCHANT_ID", "merchant-42")
	t.Setenv("LMS_CLIENT_ID", "client-7")
}

func TestLoadConfig_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected default model, got %s", cfg.OpenAI.Model)
	}
	if cfg.LMS.Timezone != "Asia/Colombo" {
		t.Errorf("Expected default timezone, got %s", cfg.LMS.Timezone)
	}
	if cfg.Cache.DraftTTLSeconds != 3600 {
		t.Errorf("Expected default draft TTL 3600, got %d", cfg.Cache.DraftTTLSeconds)
	}
	if !cfg.Journal.Enabled {
		t.Error("Expected journal enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	validEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"server": {"port": "9000"},
		"lms": {"timezone": "UTC"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// env beats file
	if cfg.Server.Port != "9999" {
		t.Errorf("Expected env port 9999, got %s", cfg.Server.Port)
	}
	// file beats defaults
	if cfg.LMS.Timezone != "UTC" {
		t.Errorf("Expected file timezone UTC, got %s", cfg.LMS.Timezone)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/no/such/config.json"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"missing api key", "OPENAI_API_KEY"},
		{"missing lms url", "LMS_BASE_URL"},
		{"missing lms email", "LMS_EMAIL"},
		{"missing merchant id", "LMS_MERCHANT_ID"},
		{"missing client id", "LMS_CLIENT_ID"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validEnv(t)
			t.Setenv(tc.unset, "")

			cfg, err := LoadConfig("")
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidate_RateLimitBounds(t *testing.T) {
	validEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RATE", "0")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero rate")
	}
}

package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "WEBSOCKET_PORT", "SERVER_TYPE", "REDIS_URL", "REDIS_PASSWORD",
		"MAX_SESSIONS", "SESSION_TIMEOUT", "MAX_VIOLATIONS", "NLU_PROVIDER",
		"RENDERER", "GEMINI_API_KEY", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 8080 || cfg.ServerType != "http" {
		t.Errorf("server defaults = %d/%s", cfg.Port, cfg.ServerType)
	}
	if cfg.MaxSessions != 100 || cfg.SessionTimeout != 30*time.Minute {
		t.Errorf("session defaults = %d/%s", cfg.MaxSessions, cfg.SessionTimeout)
	}
	if cfg.MaxViolations != 3 {
		t.Errorf("MaxViolations = %d", cfg.MaxViolations)
	}
	if cfg.NLUProvider != NLURules || cfg.Renderer != RendererTemplate {
		t.Errorf("provider defaults = %s/%s", cfg.NLUProvider, cfg.Renderer)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_TYPE", "both")
	t.Setenv("SESSION_TIMEOUT", "5")
	t.Setenv("MAX_VIOLATIONS", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 9090 || cfg.ServerType != "both" {
		t.Errorf("overrides = %d/%s", cfg.Port, cfg.ServerType)
	}
	if cfg.SessionTimeout != 5*time.Minute {
		t.Errorf("SessionTimeout = %s", cfg.SessionTimeout)
	}
	if cfg.MaxViolations != 2 {
		t.Errorf("MaxViolations = %d", cfg.MaxViolations)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "not-a-port"},
		{"SERVER_TYPE", "carrier-pigeon"},
		{"MAX_SESSIONS", "many"},
		{"NLU_PROVIDER", "oracle"},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv(tt.key, tt.value)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("%s=%s: expected error", tt.key, tt.value)
		}
	}
}

func TestGeminiProvidersRequireKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("NLU_PROVIDER", "gemini")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("gemini NLU without an API key should fail")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

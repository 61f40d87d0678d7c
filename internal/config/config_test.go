package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", cfg.OpenAIModel)
	}
	if cfg.MaxFunctionCalls != 5 {
		t.Errorf("MaxFunctionCalls = %d, want 5", cfg.MaxFunctionCalls)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Errorf("LLMTemperature = %v, want 0.7", cfg.LLMTemperature)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.NATSURL != "" {
		t.Errorf("NATSURL = %q, want empty (publishing disabled)", cfg.NATSURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_FUNCTION_CALLS", "3")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("SERVER_READ_TIMEOUT", "10s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.MaxFunctionCalls != 3 {
		t.Errorf("MaxFunctionCalls = %d, want 3", cfg.MaxFunctionCalls)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Errorf("LLMTemperature = %v, want 0.2", cfg.LLMTemperature)
	}
	if cfg.ServerReadTimeout != 10*time.Second {
		t.Errorf("ServerReadTimeout = %v, want 10s", cfg.ServerReadTimeout)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled = false, want true")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_FUNCTION_CALLS", "lots")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg := Load()

	if cfg.MaxFunctionCalls != 5 {
		t.Errorf("MaxFunctionCalls = %d, want default 5", cfg.MaxFunctionCalls)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Errorf("LLMTemperature = %v, want default 0.7", cfg.LLMTemperature)
	}
}

// Task 1.3: tests for config.Load and env helpers.
// No t.Parallel() — env vars are process-global and not thread-safe.
package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are unset so defaults apply.
	t.Setenv("DRAFTFORGE_DB_PATH", "")
	t.Setenv("DRAFTFORGE_LOCALE", "")
	t.Setenv("DRAFTFORGE_MODEL", "")
	t.Setenv("DRAFTFORGE_TAG_MODEL", "")
	t.Setenv("DRAFTFORGE_BATCH_INTERVAL_SECONDS", "")
	t.Setenv("DRAFTFORGE_LOG_PROMPTS", "")

	cfg := Load()

	if cfg.DBPath != "draftforge.sqlite" {
		t.Errorf("expected DBPath 'draftforge.sqlite', got %q", cfg.DBPath)
	}
	if cfg.Locale != "en_US" {
		t.Errorf("expected Locale 'en_US', got %q", cfg.Locale)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("expected DefaultModel 'gpt-4o-mini', got %q", cfg.DefaultModel)
	}
	if cfg.BatchInterval != DefaultBatchInterval {
		t.Errorf("expected BatchInterval %v, got %v", DefaultBatchInterval, cfg.BatchInterval)
	}
	if cfg.LogPrompts {
		t.Error("expected LogPrompts false by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DRAFTFORGE_DB_PATH", "/data/df.sqlite")
	t.Setenv("DRAFTFORGE_LOCALE", "pt_BR")
	t.Setenv("DRAFTFORGE_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("DRAFTFORGE_BATCH_INTERVAL_SECONDS", "120")
	t.Setenv("DRAFTFORGE_LOG_PROMPTS", "true")

	cfg := Load()

	if cfg.DBPath != "/data/df.sqlite" {
		t.Errorf("expected custom DBPath, got %q", cfg.DBPath)
	}
	if cfg.Locale != "pt_BR" {
		t.Errorf("expected Locale 'pt_BR', got %q", cfg.Locale)
	}
	if cfg.DefaultModel != "claude-sonnet-4-20250514" {
		t.Errorf("expected custom DefaultModel, got %q", cfg.DefaultModel)
	}
	if cfg.BatchInterval != 120*time.Second {
		t.Errorf("expected BatchInterval 120s, got %v", cfg.BatchInterval)
	}
	if !cfg.LogPrompts {
		t.Error("expected LogPrompts true")
	}
}

// TagModel falls back to the default chat model when unset.
func TestLoad_TagModelFallback(t *testing.T) {
	t.Setenv("DRAFTFORGE_MODEL", "grok-3-mini")
	t.Setenv("DRAFTFORGE_TAG_MODEL", "")

	cfg := Load()

	if cfg.TagModel != "grok-3-mini" {
		t.Errorf("expected TagModel to fall back to DefaultModel, got %q", cfg.TagModel)
	}
}

func TestEnvOr_Present(t *testing.T) {
	t.Setenv("TEST_ENVOR_KEY", "custom-value")
	got := envOr("TEST_ENVOR_KEY", "fallback")
	if got != "custom-value" {
		t.Errorf("expected 'custom-value', got %q", got)
	}
}

func TestEnvOr_Absent(t *testing.T) {
	t.Setenv("TEST_ENVOR_MISSING", "")
	got := envOr("TEST_ENVOR_MISSING", "fallback")
	if got != "fallback" {
		t.Errorf("expected 'fallback', got %q", got)
	}
}

func TestEnvSeconds_Invalid(t *testing.T) {
	t.Setenv("TEST_ENVSECONDS", "not-a-number")
	got := envSeconds("TEST_ENVSECONDS", 45*time.Second)
	if got != 45*time.Second {
		t.Errorf("expected fallback 45s on invalid input, got %v", got)
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"garbage", false},
	}

	for _, tc := range cases {
		t.Setenv("TEST_ENVBOOL", tc.value)
		if got := envBool("TEST_ENVBOOL"); got != tc.want {
			t.Errorf("envBool(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

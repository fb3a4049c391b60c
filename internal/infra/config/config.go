// Package config provides application-wide configuration loaded from env vars (Task 1.3).
// All fields have safe defaults so the binary runs locally without any env setup;
// provider API keys default to empty and gate which providers resolve.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for draftforge.
type Config struct {
	// Storage
	DBPath string // DRAFTFORGE_DB_PATH — default: "draftforge.sqlite"

	// Prompt templates
	PromptsDir string // DRAFTFORGE_PROMPTS_DIR — optional site override directory
	Locale     string // DRAFTFORGE_LOCALE — default: "en_US"

	// Models
	DefaultModel string // DRAFTFORGE_MODEL — default: "gpt-4o-mini"
	ImageModel   string // DRAFTFORGE_IMAGE_MODEL — default: "gpt-image-1"
	TagModel     string // DRAFTFORGE_TAG_MODEL — defaults to DefaultModel

	// Provider credentials (empty = provider not configured)
	OpenAIKey    string // OPENAI_API_KEY
	AnthropicKey string // ANTHROPIC_API_KEY
	GoogleKey    string // GOOGLE_API_KEY
	XAIKey       string // XAI_API_KEY
	ReplicateKey string // REPLICATE_API_KEY

	// Custom OpenAI-compatible providers, YAML registry file (optional)
	ProvidersFile string // DRAFTFORGE_PROVIDERS_FILE

	// Request log content toggles
	LogPrompts   bool // DRAFTFORGE_LOG_PROMPTS — default: false
	LogResponses bool // DRAFTFORGE_LOG_RESPONSES — default: false

	// Batch auto-tagging
	BatchInterval time.Duration // DRAFTFORGE_BATCH_INTERVAL_SECONDS — default: 60s

	// Bootstrap user seeded at startup (skipped when password empty)
	AdminUser     string // DRAFTFORGE_ADMIN_USER — default: "admin"
	AdminPassword string // DRAFTFORGE_ADMIN_PASSWORD
}

const (
	envKeyDBPath        = "DRAFTFORGE_DB_PATH"
	envKeyPromptsDir    = "DRAFTFORGE_PROMPTS_DIR"
	envKeyLocale        = "DRAFTFORGE_LOCALE"
	envKeyModel         = "DRAFTFORGE_MODEL"
	envKeyImageModel    = "DRAFTFORGE_IMAGE_MODEL"
	envKeyTagModel      = "DRAFTFORGE_TAG_MODEL"
	envKeyOpenAIKey     = "OPENAI_API_KEY"
	envKeyAnthropicKey  = "ANTHROPIC_API_KEY"
	envKeyGoogleKey     = "GOOGLE_API_KEY"
	envKeyXAIKey        = "XAI_API_KEY"
	envKeyReplicateKey  = "REPLICATE_API_KEY"
	envKeyProvidersFile = "DRAFTFORGE_PROVIDERS_FILE"
	envKeyLogPrompts    = "DRAFTFORGE_LOG_PROMPTS"
	envKeyLogResponses  = "DRAFTFORGE_LOG_RESPONSES"
	envKeyBatchInterval = "DRAFTFORGE_BATCH_INTERVAL_SECONDS"
	envKeyAdminUser     = "DRAFTFORGE_ADMIN_USER"
	envKeyAdminPassword = "DRAFTFORGE_ADMIN_PASSWORD"
)

// DefaultBatchInterval is the spacing between batch auto-tag items.
const DefaultBatchInterval = 60 * time.Second

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	cfg := Config{
		DBPath:        envOr(envKeyDBPath, "draftforge.sqlite"),
		PromptsDir:    os.Getenv(envKeyPromptsDir),
		Locale:        envOr(envKeyLocale, "en_US"),
		DefaultModel:  envOr(envKeyModel, "gpt-4o-mini"),
		ImageModel:    envOr(envKeyImageModel, "gpt-image-1"),
		OpenAIKey:     os.Getenv(envKeyOpenAIKey),
		AnthropicKey:  os.Getenv(envKeyAnthropicKey),
		GoogleKey:     os.Getenv(envKeyGoogleKey),
		XAIKey:        os.Getenv(envKeyXAIKey),
		ReplicateKey:  os.Getenv(envKeyReplicateKey),
		ProvidersFile: os.Getenv(envKeyProvidersFile),
		LogPrompts:    envBool(envKeyLogPrompts),
		LogResponses:  envBool(envKeyLogResponses),
		BatchInterval: envSeconds(envKeyBatchInterval, DefaultBatchInterval),
		AdminUser:     envOr(envKeyAdminUser, "admin"),
		AdminPassword: os.Getenv(envKeyAdminPassword),
	}
	cfg.TagModel = envOr(envKeyTagModel, cfg.DefaultModel)
	return cfg
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool treats "1", "true", "yes" (any case handled by ParseBool except yes) as true.
func envBool(key string) bool {
	v := os.Getenv(key)
	if v == "yes" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// envSeconds parses an integer number of seconds, falling back on empty or invalid values.
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

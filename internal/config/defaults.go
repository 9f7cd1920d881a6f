package config

import "time"

// Built-in defaults. The model defaults match the hosted OpenAI-compatible
// endpoint the tool was first written against.
const (
	DefaultBaseURL         = "https://integrate.api.nvidia.com/v1"
	DefaultModelID         = "openai/gpt-oss-120b"
	DefaultMaxTokens       = 40960
	DefaultResponseReserve = 8192
	DefaultTemperature     = 0.7
	DefaultTopP            = 1.0
	DefaultTimeout         = 5 * time.Minute
	DefaultMaxAttempts     = 3
	DefaultTemplate        = "default"
	DefaultOutputSuffix    = "_docs.md"
	DefaultStructureDepth  = 3
)

// DeriveResponseReserve returns the completion reserve used when the
// configuration does not set one: a quarter of maxTokens, capped at
// DefaultResponseReserve and never below one token.
func DeriveResponseReserve(maxTokens int) int {
	return max(1, min(DefaultResponseReserve, maxTokens/4))
}

// DefaultIgnore lists paths skipped by the repository structure scan.
var DefaultIgnore = []string{
	"**/node_modules/**",
	"**/__pycache__/**",
	"**/venv/**",
	"**/env/**",
	"**/vendor/**",
}

// Defaults returns the built-in configuration layer.
func Defaults() *EffectiveConfig {
	return &EffectiveConfig{
		Model: ModelConfig{
			Provider:        ProviderOpenAI,
			ID:              DefaultModelID,
			BaseURL:         DefaultBaseURL,
			MaxTokens:       DefaultMaxTokens,
			ResponseReserve: DefaultResponseReserve,
			Temperature:     DefaultTemperature,
			TopP:            DefaultTopP,
			Timeout:         DefaultTimeout,
			Retry: RetryConfig{
				MaxAttempts:  DefaultMaxAttempts,
				Backoff:      RetryBackoffExponential,
				InitialDelay: time.Second,
				MaxDelay:     30 * time.Second,
			},
		},
		Template:  DefaultTemplate,
		Templates: map[string]string{},
		Git: GitConfig{
			IncludeURL: true,
			LinkCommit: true,
		},
		Output: OutputConfig{
			Directory: ".",
			Suffix:    DefaultOutputSuffix,
		},
		Analysis: AnalysisConfig{
			Ignore:         append([]string(nil), DefaultIgnore...),
			StructureDepth: DefaultStructureDepth,
		},
		LogLevel: LogLevelInfo,
	}
}

package config

import (
	"git.home.luguber.info/inful/docweave/internal/foundation/normalization"
)

// Provider selects the text-generation backend protocol.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"    // OpenAI-compatible chat completions
	ProviderAnthropic Provider = "anthropic" // Anthropic Messages API
)

var providerNormalizer = normalization.NewEnumNormalizer("provider", map[string]Provider{
	"openai":    ProviderOpenAI,
	"nvidia":    ProviderOpenAI,
	"anthropic": ProviderAnthropic,
}, "")

// NormalizeProvider maps user input onto a Provider, returning an error for unknown values.
func NormalizeProvider(raw string) (Provider, error) {
	return providerNormalizer.NormalizeWithValidation(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps user input onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// Package config resolves the effective configuration for a generation run.
//
// Values are layered, lowest to highest precedence: built-in defaults, the
// optional YAML configuration file, environment variables (including .env
// and .env.local files), and explicit call-site overrides. The result is a
// fully resolved EffectiveConfig with no placeholders left in it.
package config

import (
	"fmt"
	"time"
)

// DefaultFileName is the configuration file picked up from the working
// directory when no explicit path is given.
const DefaultFileName = "docweave.yaml"

// EffectiveConfig is the merged configuration consumed by every pipeline stage.
type EffectiveConfig struct {
	Model     ModelConfig       `yaml:"model"`
	Template  string            `yaml:"template"`
	Templates map[string]string `yaml:"templates,omitempty"`
	Git       GitConfig         `yaml:"git"`
	Output    OutputConfig      `yaml:"output"`
	Analysis  AnalysisConfig    `yaml:"analysis"`
	History   HistoryConfig     `yaml:"history"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	LogLevel  LogLevel          `yaml:"log_level"`
	DryRun    bool              `yaml:"dry_run"`

	// File is the configuration file that was loaded, empty when none was used.
	File string `yaml:"-"`
}

// ModelConfig holds the text-generation backend settings.
type ModelConfig struct {
	Provider        Provider      `yaml:"provider"`
	ID              string        `yaml:"id"`
	BaseURL         string        `yaml:"base_url"`
	MaxTokens       int           `yaml:"max_tokens"`                 // token budget for a single request
	ResponseReserve int           `yaml:"response_reserve,omitempty"` // part of the budget kept for the completion; 0 derives it from max_tokens
	Temperature     float64       `yaml:"temperature"`
	TopP            float64       `yaml:"top_p"`
	Timeout         time.Duration `yaml:"timeout"`
	Credential      string        `yaml:"credential,omitempty"`
	Retry           RetryConfig   `yaml:"retry"`

	// CredentialRef records where Credential came from (e.g. "env:NVIDIA_API_KEY").
	CredentialRef string `yaml:"-"`
}

// RetryConfig controls the Model Invoker's handling of transient failures.
type RetryConfig struct {
	MaxAttempts  int              `yaml:"max_attempts"`
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay time.Duration    `yaml:"initial_delay"`
	MaxDelay     time.Duration    `yaml:"max_delay"`
}

// GitConfig toggles which version-control facts end up in the document.
type GitConfig struct {
	IncludeURL bool   `yaml:"include_url"`
	LinkCommit bool   `yaml:"link_commit"`
	Token      string `yaml:"token,omitempty"` // used when cloning remote sources over HTTPS
}

// OutputConfig controls where the CLI writes documents by default.
type OutputConfig struct {
	Directory   string `yaml:"directory"`
	Suffix      string `yaml:"suffix"`
	Fingerprint bool   `yaml:"fingerprint"`
}

// AnalysisConfig tunes the repository scan.
type AnalysisConfig struct {
	Ignore         []string `yaml:"ignore,omitempty"`
	StructureDepth int      `yaml:"structure_depth"`
}

// HistoryConfig enables the SQLite run journal when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig enables Prometheus textfile export when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// String renders a one-line summary without exposing the credential.
func (c *EffectiveConfig) String() string {
	cred := "unset"
	if c.Model.Credential != "" {
		cred = "set(" + c.Model.CredentialRef + ")"
	}
	return fmt.Sprintf("provider=%s model=%s max_tokens=%d temperature=%.2f template=%s credential=%s dry_run=%t",
		c.Model.Provider, c.Model.ID, c.Model.MaxTokens, c.Model.Temperature, c.Template, cred, c.DryRun)
}

// TemplatePath returns the registered path for a template name, if any.
func (c *EffectiveConfig) TemplatePath(name string) (string, bool) {
	p, ok := c.Templates[name]
	return p, ok
}

package config

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// Overrides carries explicit call-site values. Nil fields leave the lower
// layers untouched.
type Overrides struct {
	Provider    *string
	Model       *string
	BaseURL     *string
	MaxTokens   *int
	Temperature *float64
	Template    *string
	DryRun      *bool
	OutputDir   *string
	Suffix      *string
	APIKey      *string
}

type resolveOptions struct {
	lookup  LookupFunc
	workDir string
}

// Option customises Resolve.
type Option func(*resolveOptions)

// WithLookup replaces the process environment lookup (tests use this).
func WithLookup(fn LookupFunc) Option {
	return func(o *resolveOptions) { o.lookup = fn }
}

// WithWorkDir sets the directory searched for docweave.yaml and .env files.
func WithWorkDir(dir string) Option {
	return func(o *resolveOptions) { o.workDir = dir }
}

// Resolve merges defaults, the configuration file, the environment and the
// overrides into a validated EffectiveConfig. On error no partial
// configuration is returned.
func Resolve(overrides Overrides, path string, opts ...Option) (*EffectiveConfig, error) {
	o := resolveOptions{lookup: os.LookupEnv, workDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	lookup, err := layeredEnv(o.lookup, o.workDir)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	// Zero until a file sets it, so an unset reserve follows max_tokens.
	cfg.Model.ResponseReserve = 0

	file, explicit := locateFile(path, lookup, o.workDir)
	if file != "" {
		if err := loadFile(cfg, file, explicit, lookup); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, overrides, lookup); err != nil {
		return nil, err
	}
	resolveCredential(cfg, lookup)
	if cfg.Model.ResponseReserve == 0 && cfg.Model.MaxTokens > 0 {
		cfg.Model.ResponseReserve = DeriveResponseReserve(cfg.Model.MaxTokens)
	}

	if err := newValidator(cfg).validate(); err != nil {
		return nil, err
	}

	slog.Debug("Configuration resolved", logfields.Path(cfg.File), slog.String("summary", cfg.String()))
	return cfg, nil
}

// locateFile picks the configuration file: the explicit path, then
// DOCWEAVE_CONFIG, then docweave.yaml in the working directory if present.
func locateFile(path string, lookup LookupFunc, workDir string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env, ok := lookup(EnvConfigPath); ok && env != "" {
		return env, true
	}
	candidate := filepath.Join(workDir, DefaultFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, false
	}
	return "", false
}

func loadFile(cfg *EffectiveConfig, path string, explicit bool, lookup LookupFunc) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &Error{Kind: ErrFileUnreadable, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		cfg.File = path
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &Error{Kind: ErrMalformedFile, Path: path, Err: err}
	}
	if err := expandNode(&doc, lookup); err != nil {
		return err
	}
	if err := doc.Decode(cfg); err != nil {
		return &Error{Kind: ErrMalformedFile, Path: path, Err: err}
	}

	if cfg.Model.Provider != "" {
		p, perr := NormalizeProvider(string(cfg.Model.Provider))
		if perr != nil {
			return invalid("model.provider", "%v", perr)
		}
		cfg.Model.Provider = p
	}
	cfg.LogLevel = NormalizeLogLevel(string(cfg.LogLevel))
	if cfg.Model.Retry.Backoff != "" {
		mode := NormalizeRetryBackoff(string(cfg.Model.Retry.Backoff))
		if mode == "" {
			return invalid("model.retry.backoff", "unknown backoff mode %q", cfg.Model.Retry.Backoff)
		}
		cfg.Model.Retry.Backoff = mode
	}
	if cfg.Model.Credential != "" {
		cfg.Model.CredentialRef = "file"
	}

	cfg.File = path
	slog.Debug("Loaded configuration file", logfields.Path(path))
	return nil
}

func applyEnv(cfg *EffectiveConfig, lookup LookupFunc) error {
	if v, ok := nonEmpty(lookup, EnvProvider); ok {
		p, err := NormalizeProvider(v)
		if err != nil {
			return invalid(EnvProvider, "%v", err)
		}
		cfg.Model.Provider = p
	}
	if v, ok := nonEmpty(lookup, EnvModel); ok {
		cfg.Model.ID = v
	}
	if v, ok := nonEmpty(lookup, EnvBaseURL); ok {
		cfg.Model.BaseURL = v
	}
	if v, ok := nonEmpty(lookup, EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalid(EnvMaxTokens, "not an integer: %q", v)
		}
		cfg.Model.MaxTokens = n
	}
	if v, ok := nonEmpty(lookup, EnvTemperature); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return invalid(EnvTemperature, "not a number: %q", v)
		}
		cfg.Model.Temperature = f
	}
	if v, ok := nonEmpty(lookup, EnvTemplate); ok {
		cfg.Template = v
	}
	if v, ok := nonEmpty(lookup, EnvOutputDir); ok {
		cfg.Output.Directory = v
	}
	if v, ok := nonEmpty(lookup, EnvDryRun); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalid(EnvDryRun, "not a boolean: %q", v)
		}
		cfg.DryRun = b
	}
	if v, ok := nonEmpty(lookup, EnvLogLevel); ok {
		cfg.LogLevel = NormalizeLogLevel(v)
	}
	return nil
}

func applyOverrides(cfg *EffectiveConfig, ov Overrides, lookup LookupFunc) error {
	expand := func(p *string) (string, error) { return expandString(*p, lookup) }

	if ov.Provider != nil {
		raw, err := expand(ov.Provider)
		if err != nil {
			return err
		}
		p, perr := NormalizeProvider(raw)
		if perr != nil {
			return invalid("provider", "%v", perr)
		}
		cfg.Model.Provider = p
	}
	for _, s := range []struct {
		src *string
		dst *string
	}{
		{ov.Model, &cfg.Model.ID},
		{ov.BaseURL, &cfg.Model.BaseURL},
		{ov.Template, &cfg.Template},
		{ov.OutputDir, &cfg.Output.Directory},
		{ov.Suffix, &cfg.Output.Suffix},
	} {
		if s.src == nil {
			continue
		}
		v, err := expand(s.src)
		if err != nil {
			return err
		}
		*s.dst = v
	}
	if ov.APIKey != nil {
		v, err := expand(ov.APIKey)
		if err != nil {
			return err
		}
		if v != "" {
			cfg.Model.Credential = v
			cfg.Model.CredentialRef = "override"
		}
	}
	if ov.MaxTokens != nil {
		cfg.Model.MaxTokens = *ov.MaxTokens
	}
	if ov.Temperature != nil {
		cfg.Model.Temperature = *ov.Temperature
	}
	if ov.DryRun != nil {
		cfg.DryRun = *ov.DryRun
	}
	return nil
}

// resolveCredential fills an unset credential from the provider's
// well-known environment variables.
func resolveCredential(cfg *EffectiveConfig, lookup LookupFunc) {
	if cfg.Model.Credential != "" {
		return
	}
	for _, key := range credentialOrder(cfg.Model.Provider) {
		if v, ok := nonEmpty(lookup, key); ok {
			cfg.Model.Credential = v
			cfg.Model.CredentialRef = "env:" + key
			return
		}
	}
}

func nonEmpty(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

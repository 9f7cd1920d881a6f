package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// Environment variables consumed by the resolver.
const (
	EnvConfigPath  = "DOCWEAVE_CONFIG"
	EnvLogLevel    = "DOCWEAVE_LOG_LEVEL"
	EnvProvider    = "DOCWEAVE_PROVIDER"
	EnvModel       = "DOCWEAVE_MODEL"
	EnvBaseURL     = "DOCWEAVE_BASE_URL"
	EnvMaxTokens   = "DOCWEAVE_MAX_TOKENS"
	EnvTemperature = "DOCWEAVE_TEMPERATURE"
	EnvTemplate    = "DOCWEAVE_TEMPLATE"
	EnvOutputDir   = "DOCWEAVE_OUTPUT_DIR"
	EnvDryRun      = "DOCWEAVE_DRY_RUN"

	EnvPrimaryKey   = "NVIDIA_API_KEY"
	EnvFallbackKey  = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// dotEnvFiles are read from the working directory; later files win.
var dotEnvFiles = []string{".env", ".env.local"}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// layeredEnv returns a lookup where the process environment wins over
// .env.local, which wins over .env. The files are read, never loaded into
// the process environment.
func layeredEnv(process LookupFunc, workDir string) (LookupFunc, error) {
	fileVars := map[string]string{}
	for _, name := range dotEnvFiles {
		path := filepath.Join(workDir, name)
		vars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &Error{Kind: ErrMalformedFile, Path: path, Err: err}
		}
		slog.Debug("Loaded environment file", logfields.Path(path), slog.Int("vars", len(vars)))
		for k, v := range vars {
			fileVars[k] = v
		}
	}

	return func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}

// credentialOrder lists the variables consulted, in order, when no
// credential is configured explicitly.
func credentialOrder(p Provider) []string {
	if p == ProviderAnthropic {
		return []string{EnvAnthropicKey}
	}
	return []string{EnvPrimaryKey, EnvFallbackKey}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const exampleHeader = `# docweave configuration
# Values may reference environment variables as ${NAME}; an unset variable is an error.
# The credential is read from NVIDIA_API_KEY or OPENAI_API_KEY when not set here.
`

// Init writes an example configuration file. Existing files are kept unless force is set.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultFileName
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	cfg := Defaults()
	cfg.History.Path = ".docweave/history.db"
	cfg.Model.ResponseReserve = 0

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal example configuration: %w", err)
	}
	// #nosec G306 -- configuration file is meant to be user-readable
	if err := os.WriteFile(path, append([]byte(exampleHeader), body...), 0o644); err != nil {
		return &Error{Kind: ErrFileUnreadable, Path: path, Err: err}
	}
	return nil
}

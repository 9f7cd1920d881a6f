package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docweave/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite an existing configuration file"`
	Path  string `arg:"" optional:"" help:"Where to write the file (default: --config or ./docweave.yaml)" type:"path"`
}

func (i *InitCmd) Run(glob *Global, root *CLI) error {
	path := i.Path
	if path == "" {
		path = root.Config
	}
	if path == "" {
		path = config.DefaultFileName
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(glob.out(), "Wrote example configuration to %s\n", path)
	return err
}

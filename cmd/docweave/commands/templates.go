package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/render"
)

// TemplatesCmd implements 'docweave templates'.
type TemplatesCmd struct{}

func (t *TemplatesCmd) Run(glob *Global, root *CLI) error {
	cfg, err := config.Resolve(config.Overrides{}, root.Config)
	if err != nil {
		return err
	}
	list, err := render.NewRegistry(cfg.Templates).List()
	if err != nil {
		// Broken configured templates are reported; the rest still list.
		slog.Warn("Some templates could not be loaded", logfields.Error(err))
	}

	out := glob.out()
	for _, tmpl := range list {
		marker := " "
		if tmpl.Name == cfg.Template {
			marker = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %-12s %s (%s)\n", marker, tmpl.Name, tmpl.Description, tmpl.Source); err != nil {
			return err
		}
		if len(tmpl.Sections) > 0 {
			if _, err := fmt.Fprintf(out, "    sections: %s\n", strings.Join(tmpl.Sections, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

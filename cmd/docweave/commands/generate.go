package commands

import (
	"fmt"
	"io"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docweave/internal/pipeline"
)

// GenerateCmd implements the default 'generate' command.
type GenerateCmd struct {
	Source        string   `arg:"" help:"File, directory or git URL to document"`
	Output        string   `short:"o" help:"Output file (default: <output.directory>/<name><output.suffix>)" type:"path"`
	Stdout        bool     `help:"Print the document instead of writing a file"`
	Template      string   `short:"t" help:"Template name or template file path"`
	Kind          string   `help:"Treat the source as this kind (markdown, notebook, code, repository)"`
	Provider      string   `help:"Model provider (openai, anthropic)"`
	Model         string   `short:"m" help:"Model identifier"`
	BaseURL       string   `name:"base-url" help:"Model API base URL"`
	MaxTokens     *int     `name:"max-tokens" help:"Token budget for one request"`
	Temperature   *float64 `help:"Sampling temperature (0-2)"`
	DryRun        bool     `name:"dry-run" help:"Analyze, build the prompt and render without calling the model"`
	APIKey        string   `name:"api-key" help:"Model API key (default: from the environment)"`
	KeepWorkspace bool     `name:"keep-workspace" help:"Keep the clone of a remote source"`
}

func (g *GenerateCmd) Run(glob *Global, root *CLI) error {
	reg := prom.NewRegistry()
	p := pipeline.New(
		pipeline.WithPrometheus(reg),
		pipeline.WithFetcher(pipeline.NewGitFetcher("").KeepWorkspace(g.KeepWorkspace)),
	)

	doc, err := p.Generate(glob.ctx(), g.request(root))
	if err != nil {
		return err
	}
	out := glob.out()
	if doc.InMemory {
		_, err = io.WriteString(out, doc.Content)
		return err
	}
	_, err = fmt.Fprintf(out, "Documentation written to %s\n", doc.Destination)
	return err
}

// request maps flags onto a pipeline request. Only flags the user set
// become overrides.
func (g *GenerateCmd) request(root *CLI) pipeline.Request {
	req := pipeline.Request{
		Source:     g.Source,
		Output:     g.Output,
		AutoOutput: !g.Stdout && g.Output == "",
		Template:   g.Template,
		Kind:       g.Kind,
		ConfigPath: root.Config,
	}
	ov := &req.Overrides
	ov.Provider = nonEmpty(g.Provider)
	ov.Model = nonEmpty(g.Model)
	ov.BaseURL = nonEmpty(g.BaseURL)
	ov.APIKey = nonEmpty(g.APIKey)
	ov.MaxTokens = g.MaxTokens
	ov.Temperature = g.Temperature
	if g.DryRun {
		dry := true
		ov.DryRun = &dry
	}
	if g.Stdout {
		req.Output = ""
	}
	return req
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

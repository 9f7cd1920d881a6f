// Package prompt turns an analyzed representation into a bounded model
// request.
//
// The body lists the metadata facts first and then the content blocks (or
// notebook cells) in source order. When the estimate exceeds the input
// budget, units are dropped from the end so the earliest content survives;
// the payload records how many were kept.
package prompt

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/config"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/markdown"
)

// Payload is a model request ready to be sent.
type Payload struct {
	System string
	Body   string
	Source string

	// EstimatedTokens covers System and Body; it never exceeds Budget.
	EstimatedTokens int
	// Budget is the input budget: model.max_tokens minus model.response_reserve.
	Budget int
	// ResponseTokens is the completion limit sent with the request.
	ResponseTokens int

	Truncated      bool
	IncludedBlocks int
	OmittedBlocks  int
	Sections       []string
}

// Option customizes Build.
type Option func(*builder)

// WithSections lists the sections the selected template expects, so the
// model targets them.
func WithSections(sections ...string) Option {
	return func(b *builder) { b.sections = append([]string(nil), sections...) }
}

// WithTemplate names the selected template in the instructions.
func WithTemplate(name string) Option {
	return func(b *builder) { b.template = name }
}

type builder struct {
	sections []string
	template string
}

// Build serializes rep into a Payload that fits cfg's token budget.
func Build(rep *analysis.Representation, cfg *config.EffectiveConfig, opts ...Option) (*Payload, error) {
	b := &builder{}
	for _, o := range opts {
		o(b)
	}
	source := ""
	if rep != nil {
		source = rep.Artifact.Display()
	}
	if rep.IsEmpty() {
		return nil, &Error{Kind: ErrEmptySource, Source: source}
	}

	system := systemInstructions(b.template, b.sections)
	budget := cfg.Model.MaxTokens - cfg.Model.ResponseReserve
	head := header(rep)
	units := contentUnits(rep)

	// System and body are sent as separate messages; the join costs nothing.
	fixed := EstimateTokens(system) + EstimateTokens(head)
	if fixed > budget {
		return nil, &Error{Kind: ErrBudgetExceeded, Source: source, Budget: budget, Required: fixed}
	}

	included := fitUnits(head, units, budget-EstimateTokens(system))
	body := assemble(head, units[:included], len(units)-included)
	if need := EstimateTokens(system) + EstimateTokens(body); need > budget {
		return nil, &Error{Kind: ErrBudgetExceeded, Source: source, Budget: budget, Required: need}
	}

	p := &Payload{
		System:          system,
		Body:            body,
		Source:          source,
		EstimatedTokens: EstimateTokens(system) + EstimateTokens(body),
		Budget:          budget,
		ResponseTokens:  cfg.Model.ResponseReserve,
		Truncated:       included < len(units),
		IncludedBlocks:  included,
		OmittedBlocks:   len(units) - included,
		Sections:        b.sections,
	}
	if p.Truncated {
		slog.Warn("Prompt truncated to fit token budget",
			logfields.Source(source),
			slog.Int("kept", p.IncludedBlocks),
			slog.Int("omitted", p.OmittedBlocks),
			logfields.Tokens(p.EstimatedTokens))
	} else {
		slog.Debug("Prompt built", logfields.Source(source), logfields.Tokens(p.EstimatedTokens), slog.Int("budget", budget))
	}
	return p, nil
}

// fitUnits returns how many leading units fit into limit tokens together
// with head and, when anything is dropped, the omission note. Sizes are
// summed in runes, which is exact for EstimateTokens, so the scan is linear.
func fitUnits(head string, units []string, limit int) int {
	capacity := limit * charsPerToken
	costs := make([]int, len(units))
	total := utf8.RuneCountInString(head)
	if len(units) > 0 {
		total += utf8.RuneCountInString(contentHeading)
	}
	for i, u := range units {
		costs[i] = utf8.RuneCountInString(u) + 2
		total += costs[i]
	}
	if total <= capacity {
		return len(units)
	}

	// Truncation is now certain, so the heading and the note are counted.
	used := utf8.RuneCountInString(head) + utf8.RuneCountInString(contentHeading)
	n := 0
	for n < len(units) && used+costs[n]+utf8.RuneCountInString(omissionNote(len(units)-n-1)) <= capacity {
		used += costs[n]
		n++
	}
	return n
}

func header(rep *analysis.Representation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s (%s)\n", rep.Artifact.Display(), rep.Artifact.Kind)
	if rep.Artifact.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", rep.Artifact.Language)
	}
	if keys := rep.MetadataKeys(); len(keys) > 0 {
		b.WriteString("\n## Metadata\n")
		for _, k := range keys {
			v := rep.Metadata[k]
			if !strings.Contains(v, "\n") {
				fmt.Fprintf(&b, "- %s: %s\n", k, v)
				continue
			}
			fmt.Fprintf(&b, "- %s:\n", k)
			for _, line := range strings.Split(v, "\n") {
				b.WriteString("    " + line + "\n")
			}
		}
	}
	return b.String()
}

// contentUnits renders each block, or each notebook cell, as one unit.
func contentUnits(rep *analysis.Representation) []string {
	if len(rep.Blocks) == 0 && len(rep.Cells) > 0 {
		lang := rep.Metadata[analysis.MetaNotebookLang]
		units := make([]string, 0, len(rep.Cells))
		for _, c := range rep.Cells {
			content := c.Content
			if c.Kind == analysis.CellCode {
				content = markdown.Fence(lang, content)
			}
			units = append(units, fmt.Sprintf("### Cell %d (%s)\n%s", c.Position, c.Kind, content))
		}
		return units
	}

	units := make([]string, 0, len(rep.Blocks))
	for _, blk := range rep.Blocks {
		switch {
		case blk.Kind == analysis.BlockCode:
			units = append(units, markdown.Fence(blk.Language, blk.Content))
		case blk.Declaration != "":
			units = append(units, fmt.Sprintf("Documentation of `%s`:\n%s", blk.Declaration, blk.Content))
		default:
			units = append(units, blk.Content)
		}
	}
	return units
}

func assemble(head string, units []string, omitted int) string {
	var b strings.Builder
	b.WriteString(head)
	if len(units) > 0 || omitted > 0 {
		b.WriteString(contentHeading)
	}
	for _, u := range units {
		b.WriteString("\n" + u + "\n")
	}
	if omitted > 0 {
		b.WriteString(omissionNote(omitted))
	}
	return b.String()
}

const contentHeading = "\n## Content\n"

func omissionNote(omitted int) string {
	if omitted == 0 {
		return ""
	}
	return fmt.Sprintf("\n[%d trailing content blocks omitted to fit the token budget]\n", omitted)
}

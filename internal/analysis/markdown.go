package analysis

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/frontmatter"
	"git.home.luguber.info/inful/docweave/internal/logfields"
	"git.home.luguber.info/inful/docweave/internal/markdown"
)

const frontmatterPrefix = "frontmatter"

func (a *Analyzer) analyzeMarkdown(art artifact.SourceArtifact) (*Representation, error) {
	data, err := readFile(art.Path)
	if err != nil {
		return nil, err
	}
	meta := map[string]string{}

	// A leading "---" may be a thematic break rather than a header; when the
	// block does not parse as a YAML mapping the bytes are analyzed as they are.
	doc, err := frontmatter.Split(data)
	if err != nil {
		doc = frontmatter.Block{Body: data}
	}
	if doc.Present {
		fields, perr := doc.Fields()
		if perr != nil {
			slog.Debug("Leading --- block is not front matter", logfields.Path(art.Path), logfields.Error(perr))
			doc = frontmatter.Block{Body: data}
		}
		for k, v := range frontmatter.Flatten(fields, frontmatterPrefix) {
			meta[k] = v
		}
	}
	body := doc.Body

	blocks := MarkdownBlocks(string(body))

	outline := markdown.ExtractOutline(body)
	if outline.Title != "" {
		meta[MetaTitle] = outline.Title
	}
	if len(outline.Headings) > 0 {
		lines := make([]string, 0, len(outline.Headings))
		for _, h := range outline.Headings {
			lines = append(lines, strings.Repeat("#", h.Level)+" "+h.Text)
		}
		meta[MetaHeadings] = strings.Join(lines, "\n")
	}
	if links := uniqueDestinations(markdown.ExtractLinks(body)); len(links) > 0 {
		meta[MetaLinks] = strings.Join(links, "\n")
	}

	return &Representation{Artifact: art, Blocks: blocks, Metadata: meta}, nil
}

// MarkdownBlocks splits Markdown text into ordered blocks. Fenced code
// becomes a code block tagged with the fence's language; everything else
// becomes text with its line breaks intact. Blank lines at the edges of a
// text run and the final line break of a code body are not kept.
func MarkdownBlocks(body string) []Block {
	segs := markdown.SplitFences(body)
	blocks := make([]Block, 0, len(segs))
	for _, seg := range segs {
		if seg.Fenced {
			blocks = append(blocks, Block{
				Kind:     BlockCode,
				Language: seg.Language,
				Content:  trimFinalEOL(seg.Content),
			})
			continue
		}
		text := strings.Trim(seg.Content, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		blocks = append(blocks, Block{Kind: BlockText, Content: text})
	}
	return blocks
}

func trimFinalEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

func uniqueDestinations(links []markdown.Link) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l.Destination == "" || seen[l.Destination] {
			continue
		}
		seen[l.Destination] = true
		out = append(out, l.Destination)
	}
	return out
}

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownBlocks_TitleTextAndCode(t *testing.T) {
	blocks := MarkdownBlocks("# Title\n\nSome text.\n\n```python\nprint(1)\n```")
	require.Equal(t, []Block{
		{Kind: BlockText, Content: "# Title\n\nSome text."},
		{Kind: BlockCode, Language: "python", Content: "print(1)"},
	}, blocks)
}

func TestMarkdownBlocks_AbsentLanguageIsEmptyString(t *testing.T) {
	blocks := MarkdownBlocks("intro\n```\nraw\n```\noutro\n")
	require.Len(t, blocks, 3)
	require.Equal(t, BlockCode, blocks[1].Kind)
	require.Equal(t, "", blocks[1].Language)
	require.Equal(t, "raw", blocks[1].Content)
	require.Equal(t, "outro", blocks[2].Content)
}

func TestMarkdownBlocks_PreservesLineBreaks(t *testing.T) {
	blocks := MarkdownBlocks("line one\nline two\n\n\nline four\n")
	require.Len(t, blocks, 1)
	require.Equal(t, "line one\nline two\n\n\nline four", blocks[0].Content)
}

// Concatenating the blocks reproduces the document without its fence lines.
func TestMarkdownBlocks_RoundTrip(t *testing.T) {
	docs := []string{
		"# A\n\ntext\n\n```go\nfunc f() {}\n```\n\nmore\n",
		"~~~\nx\n~~~\n",
		"just prose\nacross lines\n",
	}
	normalize := func(s string) string {
		var keep []string
		for _, l := range strings.Split(s, "\n") {
			t := strings.TrimSpace(l)
			if strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~") || t == "" {
				continue
			}
			keep = append(keep, l)
		}
		return strings.Join(keep, "\n")
	}
	for _, doc := range docs {
		var parts []string
		for _, b := range MarkdownBlocks(doc) {
			parts = append(parts, b.Content)
		}
		require.Equal(t, normalize(doc), normalize(strings.Join(parts, "\n")))
	}
}

func TestAnalyzeMarkdown_Metadata(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "guide.md", "---\ntitle: Front\ntags: [a, b]\n---\n# Guide\n\nSee [docs](https://example.com).\n\n## Usage\n")
	rep, err := newTestAnalyzer(Options{}).AnalyzePath(p)
	require.NoError(t, err)
	require.Equal(t, "Guide", rep.Metadata[MetaTitle])
	require.Equal(t, "# Guide\n## Usage", rep.Metadata[MetaHeadings])
	require.Equal(t, "https://example.com", rep.Metadata[MetaLinks])
	require.Equal(t, "Front", rep.Metadata["frontmatter.title"])
	require.Equal(t, "a, b", rep.Metadata["frontmatter.tags"])
	require.Equal(t, "# Guide\n\nSee [docs](https://example.com).\n\n## Usage", rep.Blocks[0].Content)
}

func TestAnalyzeMarkdown_LeadingRuleIsNotFrontMatter(t *testing.T) {
	dir := t.TempDir()
	content := "---\nNote: this page: is a draft\n---\n\n# Title\n\nbody\n"
	p := writeFile(t, dir, "notes.md", content)
	rep, err := newTestAnalyzer(Options{}).AnalyzePath(p)
	require.NoError(t, err)
	require.Equal(t, "Title", rep.Metadata[MetaTitle])
	for k := range rep.Metadata {
		require.False(t, strings.HasPrefix(k, "frontmatter."), k)
	}
	require.Equal(t, "---\nNote: this page: is a draft\n---\n\n# Title\n\nbody", rep.Blocks[0].Content)
}

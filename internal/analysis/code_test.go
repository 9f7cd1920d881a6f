package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const goModule = `// Package demo does things.
package demo

import "fmt"

// Greeter says hello.
// It is polite.
type Greeter struct{}

// Greet prints a greeting.
func (g *Greeter) Greet() { fmt.Println("hi") }

func helper() {}
`

func TestCodeBlocks_GoDocComments(t *testing.T) {
	blocks, decls := CodeBlocks([]byte(goModule), "go")
	require.Equal(t, []Block{
		{Kind: BlockCode, Language: "go", Content: "// Package demo does things.\npackage demo\n\nimport \"fmt\""},
		{Kind: BlockText, Content: "Greeter says hello.\nIt is polite.", Declaration: "Greeter"},
		{Kind: BlockCode, Language: "go", Content: "type Greeter struct{}"},
		{Kind: BlockText, Content: "Greet prints a greeting.", Declaration: "Greeter.Greet"},
		{Kind: BlockCode, Language: "go", Content: "func (g *Greeter) Greet() { fmt.Println(\"hi\") }\n\nfunc helper() {}"},
	}, blocks)
	require.Equal(t, []string{"Greeter", "Greeter.Greet", "helper"}, decls)
}

const pythonModule = `"""Module doc."""

import os

# Helper comment
def helper():
    return 1


class Service:
    """Service docs.

    More detail.
    """

    def run(self):
        """Run it."""
        return os.getcwd()
`

func TestCodeBlocks_PythonDocstrings(t *testing.T) {
	blocks, decls := CodeBlocks([]byte(pythonModule), "python")
	require.Equal(t, []Block{
		{Kind: BlockText, Content: "Module doc."},
		{Kind: BlockCode, Language: "python", Content: "import os"},
		{Kind: BlockText, Content: "Helper comment", Declaration: "helper"},
		{Kind: BlockCode, Language: "python", Content: "def helper():\n    return 1"},
		{Kind: BlockText, Content: "Service docs.\n\nMore detail.", Declaration: "Service"},
		{Kind: BlockText, Content: "Run it.", Declaration: "Service.run"},
		{Kind: BlockCode, Language: "python", Content: "class Service:\n\n    def run(self):\n        return os.getcwd()"},
	}, blocks)
	require.Equal(t, []string{"helper", "Service"}, decls)
}

func TestCodeBlocks_PythonDocstringAfterShebang(t *testing.T) {
	src := "#!/usr/bin/env python\n# tool entry\n\"\"\"Module doc.\"\"\"\n\nimport os\n"
	blocks, _ := CodeBlocks([]byte(src), "python")
	require.Equal(t, []Block{
		{Kind: BlockCode, Language: "python", Content: "#!/usr/bin/env python\n# tool entry"},
		{Kind: BlockText, Content: "Module doc."},
		{Kind: BlockCode, Language: "python", Content: "import os"},
	}, blocks)
}

func TestCodeBlocks_TypeScriptJSDoc(t *testing.T) {
	src := "/**\n * Adds numbers.\n */\nexport function add(a: number, b: number): number {\n  return a + b;\n}\n\nconst x = 1;\n"
	blocks, decls := CodeBlocks([]byte(src), "typescript")
	require.Len(t, blocks, 2)
	require.Equal(t, Block{Kind: BlockText, Content: "Adds numbers.", Declaration: "add"}, blocks[0])
	require.Equal(t, BlockCode, blocks[1].Kind)
	require.Contains(t, blocks[1].Content, "export function add")
	require.Contains(t, blocks[1].Content, "const x = 1;")
	require.Equal(t, []string{"add", "x"}, decls)
}

func TestCodeBlocks_DetachedCommentStaysCode(t *testing.T) {
	src := "package p\n\n// stray note\n\nfunc f() {}\n"
	blocks, _ := CodeBlocks([]byte(src), "go")
	require.Len(t, blocks, 1)
	require.Equal(t, BlockCode, blocks[0].Kind)
	require.Contains(t, blocks[0].Content, "// stray note")
}

func TestCodeBlocks_UnsupportedLanguageFallsBack(t *testing.T) {
	blocks, decls := CodeBlocks([]byte("fn main() {}\n"), "rust")
	require.Equal(t, []Block{{Kind: BlockCode, Language: "rust", Content: "fn main() {}"}}, blocks)
	require.Empty(t, decls)

	blocks, _ = CodeBlocks([]byte("\n\n"), "rust")
	require.Empty(t, blocks)
}

func TestAnalyzeCode_Metadata(t *testing.T) {
	p := writeFile(t, t.TempDir(), "demo.go", goModule)
	rep, err := newTestAnalyzer(Options{}).AnalyzePath(p)
	require.NoError(t, err)
	require.Equal(t, "go", rep.Metadata[MetaLanguage])
	require.Equal(t, "Greeter, Greeter.Greet, helper", rep.Metadata[MetaDeclarations])
}

func TestCleanComments(t *testing.T) {
	require.Equal(t, "a\nb", cleanComments([]string{"// a", "//b"}))
	require.Equal(t, "hash", cleanComments([]string{"# hash"}))
	require.Equal(t, "block\nline", cleanComments([]string{"/* block\n * line */"}))
}

func TestReceiverType(t *testing.T) {
	require.Equal(t, "Server", receiverType("(s *Server)"))
	require.Equal(t, "List", receiverType("(l List[T])"))
	require.Equal(t, "", receiverType("()"))
}

package analysis

import (
	"context"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/logfields"
)

// grammar describes how to read one language's syntax tree.
type grammar struct {
	language     func() *sitter.Language
	declarations map[string]bool
	docstrings   bool // Python-style string literal as first body statement
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var tsDeclarations = set(
	"function_declaration", "generator_function_declaration",
	"class_declaration", "abstract_class_declaration",
	"interface_declaration", "type_alias_declaration", "enum_declaration",
	"lexical_declaration", "variable_declaration", "export_statement",
)

var grammars = map[string]grammar{
	"go": {
		language:     golang.GetLanguage,
		declarations: set("function_declaration", "method_declaration", "type_declaration", "const_declaration", "var_declaration"),
	},
	"python": {
		language:     python.GetLanguage,
		declarations: set("function_definition", "class_definition", "decorated_definition"),
		docstrings:   true,
	},
	"typescript": {language: typescript.GetLanguage, declarations: tsDeclarations},
	"tsx":        {language: tsx.GetLanguage, declarations: tsDeclarations},
	"javascript": {language: javascript.GetLanguage, declarations: tsDeclarations},
}

func (a *Analyzer) analyzeCode(art artifact.SourceArtifact) (*Representation, error) {
	data, err := readFile(art.Path)
	if err != nil {
		return nil, err
	}
	meta := map[string]string{}
	if art.Language != "" {
		meta[MetaLanguage] = art.Language
	}

	blocks, decls := CodeBlocks(data, art.Language)
	if len(decls) > 0 {
		meta[MetaDeclarations] = strings.Join(decls, ", ")
	}
	return &Representation{Artifact: art, Blocks: blocks, Metadata: meta}, nil
}

// CodeBlocks splits a source module into documentation text blocks and
// code blocks. A comment run directly above a declaration (or a Python
// docstring) becomes a text block whose Declaration names that
// declaration. All other source, including comments not attached to a
// declaration, is kept as code. Languages without a grammar produce a
// single code block.
func CodeBlocks(src []byte, lang string) ([]Block, []string) {
	g, ok := grammars[lang]
	if !ok {
		return wholeFile(src, lang), nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		slog.Debug("Parse failed, keeping module as one block", logfields.Kind(lang), logfields.Error(err))
		return wholeFile(src, lang), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return wholeFile(src, lang), nil
	}

	x := &codeExtractor{src: src, g: g, lang: lang}
	x.walk(root)
	if len(x.blocks) == 0 {
		return wholeFile(src, lang), x.decls
	}
	return x.blocks, x.decls
}

func wholeFile(src []byte, lang string) []Block {
	content := trimBlankLines(string(src))
	if content == "" {
		return nil
	}
	return []Block{{Kind: BlockCode, Language: lang, Content: content}}
}

type codeExtractor struct {
	src     []byte
	g       grammar
	lang    string
	blocks  []Block
	decls   []string
	pending strings.Builder
	cursor  uint32 // src[:cursor] has been consumed
}

func (x *codeExtractor) walk(root *sitter.Node) {
	n := int(root.NamedChildCount())
	// Only comments (a shebang included) may precede a module docstring.
	leading := true
	for i := 0; i < n; i++ {
		child := root.NamedChild(i)

		if leading && x.g.docstrings && isDocstring(child) {
			leading = false
			x.take(child.StartByte())
			x.flush()
			x.emitText(cleanDocstring(child.NamedChild(0).Content(x.src)), "")
			x.cursor = lineEnd(x.src, child.EndByte())
			continue
		}

		if child.Type() == "comment" {
			j := i
			last := child
			for j+1 < n {
				next := root.NamedChild(j + 1)
				if next.Type() != "comment" || next.StartPoint().Row > last.EndPoint().Row+1 {
					break
				}
				j++
				last = next
			}
			if j+1 < n {
				decl := root.NamedChild(j + 1)
				if x.g.declarations[decl.Type()] && decl.StartPoint().Row <= last.EndPoint().Row+1 {
					x.take(child.StartByte())
					x.flush()
					comments := make([]string, 0, j-i+1)
					for k := i; k <= j; k++ {
						comments = append(comments, root.NamedChild(k).Content(x.src))
					}
					x.emitText(cleanComments(comments), declName(decl, x.src))
					x.cursor = lineEnd(x.src, last.EndByte())
				}
			}
			i = j
			continue
		}
		leading = false

		if x.g.declarations[child.Type()] {
			x.declaration(child)
		}
	}
	x.take(uint32(len(x.src)))
	x.flush()
}

func (x *codeExtractor) declaration(n *sitter.Node) {
	name := declName(n, x.src)
	if name != "" {
		x.decls = append(x.decls, name)
	}
	if !x.g.docstrings {
		x.take(n.EndByte())
		return
	}

	docs := pythonDocstrings(n, x.src, "")
	if len(docs) == 0 {
		x.take(n.EndByte())
		return
	}
	x.take(n.StartByte())
	x.flush()
	for _, d := range docs {
		x.emitText(d.text, d.decl)
	}
	// Code of the declaration with its docstring statements cut out.
	pos := n.StartByte()
	for _, d := range docs {
		x.pending.Write(x.src[pos:d.start])
		pos = d.end
	}
	x.pending.Write(x.src[pos:n.EndByte()])
	x.cursor = n.EndByte()
}

// take moves src[cursor:end] into the pending code buffer.
func (x *codeExtractor) take(end uint32) {
	if end > x.cursor {
		x.pending.Write(x.src[x.cursor:end])
		x.cursor = end
	}
}

func (x *codeExtractor) flush() {
	content := trimBlankLines(x.pending.String())
	x.pending.Reset()
	if content == "" {
		return
	}
	x.blocks = append(x.blocks, Block{Kind: BlockCode, Language: x.lang, Content: content})
}

func (x *codeExtractor) emitText(text, decl string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	x.blocks = append(x.blocks, Block{Kind: BlockText, Content: text, Declaration: decl})
}

// declName returns the declared identifier, qualified with the receiver
// type for Go methods.
func declName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "export_statement":
		if d := n.ChildByFieldName("declaration"); d != nil {
			return declName(d, src)
		}
		return ""
	case "decorated_definition":
		if d := n.ChildByFieldName("definition"); d != nil {
			return declName(d, src)
		}
		return ""
	case "type_declaration", "const_declaration", "var_declaration", "lexical_declaration", "variable_declaration":
		if n.NamedChildCount() > 0 {
			if nm := n.NamedChild(0).ChildByFieldName("name"); nm != nil {
				return nm.Content(src)
			}
		}
		return ""
	case "method_declaration":
		name := ""
		if nm := n.ChildByFieldName("name"); nm != nil {
			name = nm.Content(src)
		}
		if recv := n.ChildByFieldName("receiver"); recv != nil {
			if t := receiverType(recv.Content(src)); t != "" {
				return t + "." + name
			}
		}
		return name
	}
	if nm := n.ChildByFieldName("name"); nm != nil {
		return nm.Content(src)
	}
	return ""
}

// receiverType extracts "Server" from "(s *Server)" or "(Server[T])".
func receiverType(recv string) string {
	r := strings.Trim(strings.TrimSpace(recv), "()")
	fields := strings.Fields(r)
	if len(fields) == 0 {
		return ""
	}
	t := strings.TrimLeft(fields[len(fields)-1], "*")
	if i := strings.IndexByte(t, '['); i >= 0 {
		t = t[:i]
	}
	return t
}

type docstring struct {
	start, end uint32 // byte range removed from the code, whole lines
	text       string
	decl       string
}

func isDocstring(n *sitter.Node) bool {
	return n != nil && n.Type() == "expression_statement" && n.NamedChildCount() == 1 && n.NamedChild(0).Type() == "string"
}

// pythonDocstrings collects the docstrings of a definition and, for
// classes, of the definitions nested in its body, in source order.
func pythonDocstrings(n *sitter.Node, src []byte, prefix string) []docstring {
	def := n
	if def.Type() == "decorated_definition" {
		if d := def.ChildByFieldName("definition"); d != nil {
			def = d
		}
	}
	name := prefix + declName(def, src)
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return nil
	}

	var out []docstring
	if first := body.NamedChild(0); isDocstring(first) {
		out = append(out, docstring{
			start: lineStart(src, first.StartByte()),
			end:   lineEnd(src, first.EndByte()),
			text:  cleanDocstring(first.NamedChild(0).Content(src)),
			decl:  name,
		})
	}
	if def.Type() == "class_definition" {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			switch c.Type() {
			case "function_definition", "class_definition", "decorated_definition":
				out = append(out, pythonDocstrings(c, src, name+".")...)
			}
		}
	}
	return out
}

// lineStart widens pos back over indentation to the start of its line.
func lineStart(src []byte, pos uint32) uint32 {
	for pos > 0 && (src[pos-1] == ' ' || src[pos-1] == '\t') {
		pos--
	}
	return pos
}

// lineEnd widens pos past trailing blanks and one line break.
func lineEnd(src []byte, pos uint32) uint32 {
	n := uint32(len(src))
	p := pos
	for p < n && (src[p] == ' ' || src[p] == '\t' || src[p] == '\r') {
		p++
	}
	if p < n && src[p] == '\n' {
		return p + 1
	}
	if p == n {
		return p
	}
	return pos
}

func cleanDocstring(lit string) string {
	s := strings.TrimLeft(lit, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return dedent(s)
}

// dedent trims the first line and removes the common indentation of the rest.
func dedent(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines[0] = strings.TrimSpace(lines[0])
	indent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		w := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || w < indent {
			indent = w
		}
	}
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) >= indent && indent > 0 {
			lines[i] = lines[i][indent:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " \t")
		}
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// cleanComments strips comment markers from a run of comments.
func cleanComments(comments []string) string {
	var lines []string
	for _, c := range comments {
		c = strings.TrimSpace(c)
		switch {
		case strings.HasPrefix(c, "/*"):
			c = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c, "/**"), "/*"), "*/")
			for _, l := range strings.Split(c, "\n") {
				l = strings.TrimSpace(l)
				l = strings.TrimPrefix(l, "*")
				lines = append(lines, strings.TrimPrefix(l, " "))
			}
		case strings.HasPrefix(c, "//"):
			l := strings.TrimLeft(c, "/")
			lines = append(lines, strings.TrimPrefix(l, " "))
		case strings.HasPrefix(c, "#"):
			l := strings.TrimPrefix(c, "#")
			lines = append(lines, strings.TrimPrefix(l, " "))
		default:
			lines = append(lines, c)
		}
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// trimBlankLines drops whitespace-only lines at both ends and trailing
// whitespace, keeping the indentation of the first real line.
func trimBlankLines(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[:i]) != "" {
			break
		}
		s = s[i+1:]
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

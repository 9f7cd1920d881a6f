package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docweave/internal/artifact"
)

// maxScanFiles bounds the repository walk on very large trees.
const maxScanFiles = 50000

// maxStructureEntries bounds the structure tree kept in metadata.
const maxStructureEntries = 400

var errScanLimit = errors.New("scan limit reached")

var languageNames = map[string]string{
	"go": "Go", "python": "Python", "typescript": "TypeScript", "tsx": "TypeScript",
	"javascript": "JavaScript", "java": "Java", "kotlin": "Kotlin", "rust": "Rust",
	"ruby": "Ruby", "php": "PHP", "c": "C", "cpp": "C++", "csharp": "C#",
	"swift": "Swift", "scala": "Scala", "bash": "Shell",
}

var frameworkIndicators = []struct {
	file       string
	frameworks []string
}{
	{"package.json", []string{"react", "vue", "angular", "express", "fastify", "next", "nestjs"}},
	{"requirements.txt", []string{"django", "flask", "fastapi", "tornado"}},
	{"pyproject.toml", []string{"django", "flask", "fastapi", "tornado"}},
	{"pom.xml", []string{"spring", "hibernate"}},
	{"build.gradle", []string{"spring", "hibernate"}},
	{"go.mod", []string{"gin", "echo", "fiber", "chi", "grpc"}},
	{"Cargo.toml", []string{"actix", "rocket", "warp", "axum"}},
}

var entryPointFiles = []string{
	"main.py", "app.py", "server.py", "manage.py", "index.js", "main.js",
	"app.js", "server.js", "index.ts", "main.go", "main.java", "Program.cs",
}

var entryPointGlobs = []string{"cmd/*/main.go", "src/main.*", "src/index.*"}

var configFiles = []string{
	"config.json", "config.yaml", "config.yml",
	".env.example", ".env.template",
	"docker-compose.yml", "docker-compose.yaml",
	"Dockerfile", "Makefile",
	"package.json", "requirements.txt", "setup.py", "pyproject.toml",
	"pom.xml", "build.gradle", "go.mod", "Cargo.toml",
}

var readmeFiles = []string{"README.md", "README.rst", "README.txt", "README"}

// analyzeRepository produces metadata only: the repository's shape, its
// manifests and README, plus the VCS facts added by Analyze.
func (a *Analyzer) analyzeRepository(art artifact.SourceArtifact) (*Representation, error) {
	info, err := os.Stat(art.Path)
	if err != nil {
		return nil, ioFailure(art.Path, err)
	}
	if !info.IsDir() {
		return nil, &Error{Kind: ErrUnsupportedArtifact, Path: art.Path, Detail: "repository source must be a directory"}
	}

	scan, err := scanRepository(art.Path, a.opts.Ignore)
	if err != nil {
		return nil, ioFailure(art.Path, err)
	}
	root := os.DirFS(art.Path)

	meta := map[string]string{}
	put := func(key string, values []string, sep string) {
		if len(values) > 0 {
			meta[key] = strings.Join(values, sep)
		}
	}
	put(MetaLanguages, scan.languages(), ", ")
	put(MetaFrameworks, detectFrameworks(root), ", ")
	put(MetaEntryPoints, findEntryPoints(root), ", ")
	put(MetaDependencies, collectDependencies(root), ", ")
	put(MetaConfigFiles, findConfigFiles(root), "\n")
	put(MetaAPISpecs, scan.apiSpecs(root), "\n")
	if tree := structureTree(art.Path, a.opts.StructureDepth, a.opts.Ignore, maxStructureEntries); tree != "" {
		meta[MetaStructure] = tree
	}
	if readme := readReadme(root, a.opts.ReadmeLimit); readme != "" {
		meta[MetaReadme] = readme
	}

	return &Representation{Artifact: art, Metadata: meta}, nil
}

type repoScan struct {
	langCounts map[string]int
	specs      []string
	schemas    []string
}

func ignored(rel string, isDir bool, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if isDir {
			if ok, _ := doublestar.Match(p, rel+"/_"); ok {
				return true
			}
		}
	}
	return false
}

func scanRepository(rootPath string, ignore []string) (*repoScan, error) {
	s := &repoScan{langCounts: map[string]int{}}
	files := 0
	err := filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == rootPath {
				return err
			}
			return nil
		}
		if p == rootPath {
			return nil
		}
		rel, rerr := filepath.Rel(rootPath, p)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(d.Name(), ".") || ignored(rel, d.IsDir(), ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		files++
		if files > maxScanFiles {
			return errScanLimit
		}

		ext := strings.ToLower(path.Ext(rel))
		if lang, ok := artifact.CodeLanguages[ext]; ok {
			if name, ok := languageNames[lang]; ok {
				s.langCounts[name]++
			}
		}
		lower := strings.ToLower(d.Name())
		switch {
		case (strings.Contains(lower, "openapi") || strings.Contains(lower, "swagger")) &&
			(ext == ".yaml" || ext == ".yml" || ext == ".json"):
			s.specs = append(s.specs, rel)
		case ext == ".graphql" || ext == ".gql":
			s.schemas = append(s.schemas, rel)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errScanLimit) {
		return nil, err
	}
	return s, nil
}

// languages lists detected languages, most files first.
func (s *repoScan) languages() []string {
	names := make([]string, 0, len(s.langCounts))
	for n := range s.langCounts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.langCounts[names[i]] != s.langCounts[names[j]] {
			return s.langCounts[names[i]] > s.langCounts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

type openAPIDoc struct {
	OpenAPI string `yaml:"openapi"`
	Swagger string `yaml:"swagger"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]yaml.Node `yaml:"paths"`
}

const sampleEndpoints = 3

func (s *repoScan) apiSpecs(root fs.FS) []string {
	var out []string
	for _, rel := range s.specs {
		line := "OpenAPI spec: " + rel
		// JSON is valid YAML, so one decoder serves both encodings.
		if data, err := fs.ReadFile(root, rel); err == nil {
			var doc openAPIDoc
			if yaml.Unmarshal(data, &doc) == nil && (doc.Info.Title != "" || len(doc.Paths) > 0) {
				line += fmt.Sprintf(" (title: %s, version: %s, endpoints: %d", orUnknown(doc.Info.Title), orUnknown(doc.Info.Version), len(doc.Paths))
				paths := make([]string, 0, len(doc.Paths))
				for p := range doc.Paths {
					paths = append(paths, p)
				}
				sort.Strings(paths)
				if len(paths) > sampleEndpoints {
					paths = paths[:sampleEndpoints]
				}
				if len(paths) > 0 {
					line += ", sample: " + strings.Join(paths, " ")
				}
				line += ")"
			}
		}
		out = append(out, line)
	}
	for _, rel := range s.schemas {
		out = append(out, "GraphQL schema: "+rel)
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func detectFrameworks(root fs.FS) []string {
	title := cases.Title(language.English)
	seen := map[string]bool{}
	var out []string
	for _, ind := range frameworkIndicators {
		data, err := fs.ReadFile(root, ind.file)
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for _, fw := range ind.frameworks {
			if strings.Contains(content, fw) && !seen[fw] {
				seen[fw] = true
				out = append(out, title.String(fw))
			}
		}
	}
	return out
}

func findEntryPoints(root fs.FS) []string {
	var out []string
	for _, f := range entryPointFiles {
		if st, err := fs.Stat(root, f); err == nil && !st.IsDir() {
			out = append(out, f)
		}
	}
	for _, g := range entryPointGlobs {
		matches, err := doublestar.Glob(root, g)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

const maxDependenciesPerManifest = 10

type packageJSON struct {
	Dependencies map[string]string `yaml:"dependencies"`
	Scripts      map[string]string `yaml:"scripts"`
	Engines      map[string]string `yaml:"engines"`
}

func collectDependencies(root fs.FS) []string {
	var out []string
	if data, err := fs.ReadFile(root, "requirements.txt"); err == nil {
		out = append(out, limit(requirementNames(string(data)), maxDependenciesPerManifest)...)
	}
	if data, err := fs.ReadFile(root, "package.json"); err == nil {
		var pkg packageJSON
		if yaml.Unmarshal(data, &pkg) == nil {
			out = append(out, limit(sortedKeys(pkg.Dependencies), maxDependenciesPerManifest)...)
		}
	}
	if data, err := fs.ReadFile(root, "go.mod"); err == nil {
		out = append(out, limit(goModRequires(string(data)), maxDependenciesPerManifest)...)
	}
	return out
}

func requirementNames(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.IndexAny(line, "=<>~!;[ "); i >= 0 {
			line = line[:i]
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func goModRequires(content string) []string {
	var out []string
	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "require ("):
			inBlock = true
			continue
		case inBlock && line == ")":
			inBlock = false
			continue
		case strings.HasPrefix(line, "require "):
			line = strings.TrimPrefix(line, "require ")
		case !inBlock:
			continue
		}
		if strings.Contains(line, "// indirect") {
			continue
		}
		if fields := strings.Fields(line); len(fields) >= 2 {
			out = append(out, fields[0])
		}
	}
	return out
}

func findConfigFiles(root fs.FS) []string {
	var out []string
	for _, f := range configFiles {
		if _, err := fs.Stat(root, f); err != nil {
			continue
		}
		entry := "- " + f
		if f == "package.json" {
			if data, err := fs.ReadFile(root, f); err == nil {
				var pkg packageJSON
				if yaml.Unmarshal(data, &pkg) == nil {
					var parts []string
					if scripts := limit(sortedKeys(pkg.Scripts), 3); len(scripts) > 0 {
						parts = append(parts, "scripts: "+strings.Join(scripts, ", "))
					}
					if node := pkg.Engines["node"]; node != "" {
						parts = append(parts, "node: "+node)
					}
					if len(parts) > 0 {
						entry += " (" + strings.Join(parts, " | ") + ")"
					}
				}
			}
		}
		if f == "requirements.txt" {
			if data, err := fs.ReadFile(root, f); err == nil {
				entry += fmt.Sprintf(" (%d packages)", len(requirementNames(string(data))))
			}
		}
		out = append(out, entry)
	}
	return out
}

// structureTree renders the directory tree below rootPath. depth counts
// the directory levels expanded below the top level. After maxEntries lines
// the tree ends with a truncation marker.
func structureTree(rootPath string, depth int, ignore []string, maxEntries int) string {
	var b strings.Builder
	b.WriteString(filepath.Base(filepath.Clean(rootPath)))
	written, truncated := 0, false
	var walk func(dir, rel, prefix string, level int)
	walk = func(dir, rel, prefix string, level int) {
		if truncated {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return
		}
		visible := entries[:0:0]
		for _, e := range entries {
			childRel := path.Join(rel, e.Name())
			if strings.HasPrefix(e.Name(), ".") || ignored(childRel, e.IsDir(), ignore) {
				continue
			}
			visible = append(visible, e)
		}
		for i, e := range visible {
			if maxEntries > 0 && written >= maxEntries {
				truncated = true
				return
			}
			written++
			last := i == len(visible)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			b.WriteString("\n" + prefix + branch + e.Name())
			if e.IsDir() && level < depth {
				walk(filepath.Join(dir, e.Name()), path.Join(rel, e.Name()), prefix+next, level+1)
			}
		}
	}
	walk(rootPath, "", "", 0)
	if truncated {
		fmt.Fprintf(&b, "\n… (truncated after %d entries)", maxEntries)
	}
	return b.String()
}

func readReadme(root fs.FS, max int) string {
	for _, name := range readmeFiles {
		data, err := fs.ReadFile(root, name)
		if err != nil {
			continue
		}
		return truncateUTF8(strings.TrimSpace(string(data)), max)
	}
	return ""
}

func truncateUTF8(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n…"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func limit(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

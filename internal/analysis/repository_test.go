package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweave/internal/artifact"
	"git.home.luguber.info/inful/docweave/internal/config"
)

func sampleService(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "employee-service")
	writeFile(t, dir, "README.md", "# Employee Service\n\nManages employees.\n")
	writeFile(t, dir, "go.mod", "module example.com/emp\n\ngo 1.22\n\nrequire (\n\tgithub.com/gin-gonic/gin v1.9.1\n\tgolang.org/x/sys v0.1.0 // indirect\n)\n")
	writeFile(t, dir, "cmd/server/main.go", "package main\n")
	writeFile(t, dir, "internal/api/handler.go", "package api\n")
	writeFile(t, dir, "scripts/seed.py", "print(1)\n")
	writeFile(t, dir, "api/openapi.yaml", "openapi: 3.0.0\ninfo:\n  title: Employees\n  version: 1.2.0\npaths:\n  /employees: {}\n  /employees/{id}: {}\n")
	writeFile(t, dir, "schema.graphql", "type Query { a: Int }\n")
	writeFile(t, dir, "Dockerfile", "FROM scratch\n")
	writeFile(t, dir, "node_modules/left-pad/index.js", "module.exports = 1\n")
	writeFile(t, dir, ".github/workflows/ci.yml", "on: push\n")
	return dir
}

func TestAnalyzeRepository_MetadataOnly(t *testing.T) {
	dir := sampleService(t)
	a := newTestAnalyzer(OptionsFromConfig(config.Defaults()))

	rep, err := a.Analyze(artifact.SourceArtifact{Path: dir, Kind: artifact.KindRepository})
	require.NoError(t, err)
	require.Empty(t, rep.Blocks)
	require.Empty(t, rep.Cells)

	require.Equal(t, "Go, Python", rep.Metadata[MetaLanguages])
	require.Equal(t, "Gin", rep.Metadata[MetaFrameworks])
	require.Equal(t, "cmd/server/main.go", rep.Metadata[MetaEntryPoints])
	require.Equal(t, "github.com/gin-gonic/gin", rep.Metadata[MetaDependencies])
	require.Equal(t, "- Dockerfile\n- go.mod", rep.Metadata[MetaConfigFiles])
	require.Contains(t, rep.Metadata[MetaAPISpecs], "OpenAPI spec: api/openapi.yaml (title: Employees, version: 1.2.0, endpoints: 2")
	require.Contains(t, rep.Metadata[MetaAPISpecs], "GraphQL schema: schema.graphql")
	require.Equal(t, "# Employee Service\n\nManages employees.", rep.Metadata[MetaReadme])

	tree := rep.Metadata[MetaStructure]
	require.True(t, strings.HasPrefix(tree, "employee-service\n"))
	require.Contains(t, tree, "cmd")
	require.NotContains(t, tree, "node_modules")
	require.NotContains(t, tree, ".github")
}

func TestStructureTree_DepthLimit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "root")
	writeFile(t, dir, "a/b/c/deep.txt", "x")
	writeFile(t, dir, "top.txt", "x")

	require.Equal(t, "root\n├── a\n└── top.txt", structureTree(dir, 0, nil, 0))
	require.Equal(t, "root\n├── a\n│   └── b\n│       └── c\n│           └── deep.txt\n└── top.txt", structureTree(dir, 3, nil, 0))
}

func TestStructureTree_EntryLimit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "root")
	writeFile(t, dir, "a/b/c/deep.txt", "x")
	writeFile(t, dir, "top.txt", "x")

	require.Equal(t, "root\n├── a\n│   └── b\n│       └── c\n… (truncated after 3 entries)", structureTree(dir, 3, nil, 3))
}

func TestReadReadme_Truncated(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", strings.Repeat("é", 100))

	got := readReadme(os.DirFS(dir), 11)
	require.Equal(t, strings.Repeat("é", 5)+"\n…", got)
}

func TestAnalyzeRepository_WithHistory(t *testing.T) {
	dir := sampleService(t)
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:acme/employee-service.git"}})
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	hash, err := wt.Commit("init", &gogit.CommitOptions{Author: &object.Signature{Name: "Grace", Email: "g@example.com", When: when}})
	require.NoError(t, err)

	rep, err := New(Options{IncludeURL: true, LinkCommit: true}).Analyze(artifact.SourceArtifact{Path: dir, Kind: artifact.KindRepository})
	require.NoError(t, err)
	require.Equal(t, "Grace", rep.Metadata[MetaAuthor])
	require.Equal(t, "2025-01-02T03:04:05Z", rep.Metadata[MetaLastCommit])
	require.Equal(t, "https://github.com/acme/employee-service", rep.Metadata[MetaRepositoryURL])
	require.Equal(t, "https://github.com/acme/employee-service/commit/"+hash.String(), rep.Metadata[MetaCommitURL])
}

func TestGoModRequires(t *testing.T) {
	mod := "module x\n\nrequire github.com/a/b v1.0.0\n\nrequire (\n\tgithub.com/c/d v0.1.0\n\tgithub.com/e/f v0.2.0 // indirect\n)\n"
	require.Equal(t, []string{"github.com/a/b", "github.com/c/d"}, goModRequires(mod))
}

func TestRequirementNames(t *testing.T) {
	req := "# comment\nflask==2.0\nrequests>=2\n-r base.txt\nuvicorn[standard]~=0.20\n"
	require.Equal(t, []string{"flask", "requests", "uvicorn"}, requirementNames(req))
}

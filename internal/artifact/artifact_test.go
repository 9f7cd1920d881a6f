package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
		kind Kind
		lang string
	}{
		{"markdown", write("README.md", "# hi"), KindMarkdown, ""},
		{"markdown upper ext", write("NOTES.MARKDOWN", "x"), KindMarkdown, ""},
		{"notebook ext", write("a.ipynb", "{}"), KindNotebook, ""},
		{"notebook sniffed", write("export", `{"cells": [], "nbformat": 4}`), KindNotebook, ""},
		{"go code", write("main.go", "package main"), KindCode, "go"},
		{"python code", write("app.py", "print(1)"), KindCode, "python"},
		{"directory", dir, KindRepository, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Classify(tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.kind, a.Kind)
			require.Equal(t, tt.lang, a.Language)
			require.Equal(t, tt.path, a.Path)
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "image.bin")
	require.NoError(t, os.WriteFile(p, []byte{0x89, 'P', 'N', 'G'}, 0o600))

	_, err := Classify(p)
	require.True(t, errors.Is(err, ErrUnsupported))
}

func TestClassify_Missing(t *testing.T) {
	_, err := Classify(filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnsupported))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSourceArtifact_Name(t *testing.T) {
	require.Equal(t, "guide", SourceArtifact{Path: "docs/guide.md", Kind: KindMarkdown}.Name())
	require.Equal(t, "service", SourceArtifact{Path: "/src/service/", Kind: KindRepository}.Name())
	require.Equal(t, "v1.2", SourceArtifact{Path: "/src/v1.2", Kind: KindRepository}.Name())
}

func TestSourceArtifact_Display(t *testing.T) {
	local := SourceArtifact{Path: "/tmp/clone/widgets", Kind: KindRepository}
	require.Equal(t, "/tmp/clone/widgets", local.Display())

	local.Origin = "https://example.com/acme/widgets.git"
	require.Equal(t, "https://example.com/acme/widgets.git", local.Display())
	require.Equal(t, "widgets", local.Name())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("IPYNB")
	require.NoError(t, err)
	require.Equal(t, KindNotebook, k)

	_, err = ParseKind("spreadsheet")
	require.Error(t, err)
}

package docweave

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStagesComposeInDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	src := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(src, []byte("# Notes\n\nPlain text.\n\n```go\nfmt.Println(1)\n```\n"), 0o600))

	dry := true
	cfg, err := Resolve(Overrides{DryRun: &dry}, "")
	require.NoError(t, err)

	rep, err := Analyze(src, cfg)
	require.NoError(t, err)
	require.Len(t, rep.Blocks, 2)

	payload, err := Build(rep, cfg)
	require.NoError(t, err)
	require.LessOrEqual(t, payload.EstimatedTokens, payload.Budget)
	require.Contains(t, payload.Body, "Plain text.")

	n, err := Invoke(t.Context(), payload, cfg)
	require.NoError(t, err)
	require.True(t, n.Synthetic)
	require.Empty(t, n.Text)

	doc, err := Render(n, rep, cfg)
	require.NoError(t, err)
	require.True(t, doc.InMemory)
	require.Contains(t, doc.Content, "# Notes")
}

func TestGenerate_ReturnsStageError(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Generate(t.Context(), Request{Source: filepath.Join(t.TempDir(), "absent.md")})
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "analyze", string(se.Stage))
}

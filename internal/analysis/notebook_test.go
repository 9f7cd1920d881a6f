package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleNotebook = `{
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Analysis\n", "Intro text"]},
  {"cell_type": "code", "execution_count": 3, "metadata": {"tags": ["setup"]}, "outputs": [], "source": "import pandas as pd"},
  {"cell_type": "raw", "metadata": {}, "source": "raw text"},
  {"cell_type": "code", "execution_count": null, "metadata": {}, "outputs": [], "source": ["df.head()"]}
 ],
 "metadata": {"kernelspec": {"language": "python", "name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func TestAnalyzeNotebook_CellsInFileOrder(t *testing.T) {
	p := writeFile(t, t.TempDir(), "analysis.ipynb", sampleNotebook)
	rep, err := newTestAnalyzer(Options{}).AnalyzePath(p)
	require.NoError(t, err)

	require.Equal(t, []Cell{
		{Kind: CellMarkdown, Content: "# Analysis\nIntro text", Position: 0},
		{Kind: CellCode, Content: "import pandas as pd", Position: 1},
		{Kind: CellMarkdown, Content: "raw text", Position: 2},
		{Kind: CellCode, Content: "df.head()", Position: 3},
	}, rep.Cells)

	require.Len(t, rep.Blocks, 4)
	require.Equal(t, BlockCode, rep.Blocks[1].Kind)
	require.Equal(t, "python", rep.Blocks[1].Language)

	require.Equal(t, "3", rep.Metadata["cell.1.execution_count"])
	require.Equal(t, `{"tags": ["setup"]}`, rep.Metadata["cell.1.metadata"])
	require.Equal(t, "raw", rep.Metadata["cell.2.cell_type"])
	_, hasCount := rep.Metadata["cell.3.execution_count"]
	require.False(t, hasCount)
	require.Equal(t, "python", rep.Metadata[MetaNotebookLang])
	require.Equal(t, "4", rep.Metadata[MetaCellCount])
}

func TestAnalyzeNotebook_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":          "{cells: nope",
		"missing cells":     `{"metadata": {}}`,
		"unknown cell type": `{"cells": [{"cell_type": "widget", "source": ""}]}`,
		"bad source":        `{"cells": [{"cell_type": "code", "source": 42}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "nb.ipynb", body)
			_, err := newTestAnalyzer(Options{}).AnalyzePath(p)
			var aerr *Error
			require.True(t, errors.As(err, &aerr))
			require.Equal(t, ErrMalformedInput, aerr.Kind)
		})
	}
}

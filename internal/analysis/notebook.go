package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"git.home.luguber.info/inful/docweave/internal/artifact"
)

type notebookFile struct {
	Cells    *[]notebookCell `json:"cells"`
	Metadata struct {
		Kernelspec struct {
			Language string `json:"language"`
			Name     string `json:"name"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

type notebookCell struct {
	CellType       string          `json:"cell_type"`
	Source         json.RawMessage `json:"source"`
	ExecutionCount json.RawMessage `json:"execution_count"`
	Metadata       json.RawMessage `json:"metadata"`
}

// cellKey returns the metadata key for a cell-level attribute.
func cellKey(position int, attr string) string {
	return "cell." + strconv.Itoa(position) + "." + attr
}

func (a *Analyzer) analyzeNotebook(art artifact.SourceArtifact) (*Representation, error) {
	data, err := readFile(art.Path)
	if err != nil {
		return nil, err
	}

	var nb notebookFile
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, &Error{Kind: ErrMalformedInput, Path: art.Path, Detail: "not a notebook document", Err: err}
	}
	if nb.Cells == nil {
		return nil, malformed(art.Path, "missing cells array")
	}

	lang := nb.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = nb.Metadata.Kernelspec.Language
	}

	meta := map[string]string{MetaCellCount: strconv.Itoa(len(*nb.Cells))}
	if lang != "" {
		meta[MetaNotebookLang] = lang
	}

	cells := make([]Cell, 0, len(*nb.Cells))
	blocks := make([]Block, 0, len(*nb.Cells))
	for i, c := range *nb.Cells {
		source, err := joinSource(c.Source)
		if err != nil {
			return nil, malformed(art.Path, "cell %d: %v", i, err)
		}

		var kind CellKind
		switch c.CellType {
		case "markdown":
			kind = CellMarkdown
		case "code":
			kind = CellCode
		case "raw":
			kind = CellMarkdown
			meta[cellKey(i, "cell_type")] = "raw"
		default:
			return nil, malformed(art.Path, "cell %d: unknown cell_type %q", i, c.CellType)
		}

		cells = append(cells, Cell{Kind: kind, Content: source, Position: i})
		if kind == CellCode {
			blocks = append(blocks, Block{Kind: BlockCode, Language: lang, Content: source})
		} else {
			blocks = append(blocks, Block{Kind: BlockText, Content: source})
		}

		if raw := verbatim(c.ExecutionCount); raw != "" && raw != "null" {
			meta[cellKey(i, "execution_count")] = raw
		}
		if raw := verbatim(c.Metadata); raw != "" && raw != "{}" {
			meta[cellKey(i, "metadata")] = raw
		}
	}

	return &Representation{Artifact: art, Blocks: blocks, Cells: cells, Metadata: meta}, nil
}

// joinSource accepts both notebook source encodings: a single string or a
// list of line strings.
func joinSource(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("source is neither a string nor a list of strings")
	}
	var b bytes.Buffer
	for _, l := range lines {
		b.WriteString(l)
	}
	return b.String(), nil
}

func verbatim(raw json.RawMessage) string {
	return string(bytes.TrimSpace(raw))
}

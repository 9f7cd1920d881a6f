// Package frontmatter reads and writes the YAML header that may open a
// Markdown document. Template files use it to declare their name and
// sections, Markdown sources use it to carry metadata, and rendered
// documents use it for the fingerprint header.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrUnterminated reports a document that opens a header but never closes it.
var ErrUnterminated = errors.New("front matter opened with --- but not closed")

// Block is a document split into its header and body.
type Block struct {
	// Header is the raw YAML between the delimiters, without them.
	Header []byte
	Body   []byte
	// Present is false when the document has no header; Body is then the
	// whole input.
	Present bool
	// Newline is the line ending of the first line, "\n" or "\r\n".
	Newline string
}

// Split separates the header from the body of content.
func Split(content []byte) (Block, error) {
	nl := newlineOf(content)
	b := Block{Body: content, Newline: nl}

	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return b, nil
	}
	rest := content[len(open):]

	// An empty header closes on the very next line.
	if bytes.HasPrefix(rest, open) {
		return Block{Header: []byte{}, Body: rest[len(open):], Present: true, Newline: nl}, nil
	}

	closing := []byte(nl + delimiter + nl)
	end := bytes.Index(rest, closing)
	if end < 0 {
		return Block{}, ErrUnterminated
	}
	return Block{
		Header:  rest[:end+len(nl)],
		Body:    rest[end+len(closing):],
		Present: true,
		Newline: nl,
	}, nil
}

// Fields parses the header into a map. A missing or empty header yields an
// empty map.
func (b Block) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if len(b.Header) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(b.Header, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Decode unmarshals the header into out. A missing header leaves out untouched.
func (b Block) Decode(out any) error {
	if len(b.Header) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(b.Header, out); err != nil {
		return fmt.Errorf("decode front matter: %w", err)
	}
	return nil
}

// Bytes reassembles the document.
func (b Block) Bytes() []byte {
	if !b.Present {
		return b.Body
	}
	nl := b.Newline
	if nl == "" {
		nl = "\n"
	}
	var buf bytes.Buffer
	buf.Grow(len(b.Header) + len(b.Body) + 2*(len(delimiter)+len(nl)))
	buf.WriteString(delimiter + nl)
	buf.Write(b.Header)
	buf.WriteString(delimiter + nl)
	buf.Write(b.Body)
	return buf.Bytes()
}

func newlineOf(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

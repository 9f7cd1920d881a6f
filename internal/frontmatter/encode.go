package frontmatter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encode serializes fields as header YAML using the given line ending.
// Map keys are emitted in sorted order at every level, so equal maps encode
// to equal bytes. An empty map encodes to nothing.
func Encode(fields map[string]any, newline string) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if newline != "" && newline != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(newline))
	}
	return out, nil
}

// Prepend writes fields as a header in front of body, matching body's line
// endings. Without fields, body is returned unchanged.
func Prepend(fields map[string]any, body []byte) ([]byte, error) {
	if len(fields) == 0 {
		return body, nil
	}
	nl := newlineOf(body)
	header, err := Encode(fields, nl)
	if err != nil {
		return nil, err
	}
	return Block{Header: header, Body: body, Present: true, Newline: nl}.Bytes(), nil
}

// Flatten turns parsed fields into flat string pairs. Nested keys are joined
// with "." under prefix and lists become comma-separated values.
func Flatten(fields map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	flatten(out, prefix, fields)
	return out
}

func flatten(out map[string]string, key string, v any) {
	switch vv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(out, childKey(key, k), vv[k])
		}
	case []any:
		parts := make([]string, len(vv))
		for i, item := range vv {
			parts[i] = fmt.Sprint(item)
		}
		out[key] = strings.Join(parts, ", ")
	case nil:
		out[key] = ""
	default:
		out[key] = fmt.Sprint(vv)
	}
}

func childKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type kind string

const (
	kindMarkdown kind = "markdown"
	kindCode     kind = "code"
)

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]kind{
		"markdown":    kindMarkdown,
		"code-module": kindCode,
	}, kindMarkdown)

	tests := []struct {
		in   string
		want kind
	}{
		{"markdown", kindMarkdown},
		{"  MARKDOWN ", kindMarkdown},
		{"code-module", kindCode},
		{"Code_Module", kindCode},
		{"spreadsheet", kindMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
	require.Equal(t, []string{"code-module", "markdown"}, n.ValidKeys())
}

func TestNormalizeWithError(t *testing.T) {
	n := NewNormalizer(map[string]kind{"code": kindCode}, "")
	v, err := n.NormalizeWithError(" CODE ")
	require.NoError(t, err)
	require.Equal(t, kindCode, v)

	_, err = n.NormalizeWithError("sheet")
	require.EqualError(t, err, `invalid value "sheet", valid options: code`)
}

func TestEnumNormalizer(t *testing.T) {
	e := NewEnumNormalizer("artifact kind", map[string]kind{"md": kindMarkdown, "code": kindCode}, "")
	v, err := e.NormalizeWithValidation("MD")
	require.NoError(t, err)
	require.Equal(t, kindMarkdown, v)

	_, err = e.NormalizeWithValidation("xls")
	require.ErrorContains(t, err, "invalid artifact kind")
	require.Equal(t, kindCode, e.Normalize("code"))
	require.Equal(t, []string{"code", "md"}, e.ValidValues())
}

func TestKey(t *testing.T) {
	require.Equal(t, "response-reserve", Key(" Response_Reserve "))
}

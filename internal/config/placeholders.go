package config

import (
	"regexp"

	"gopkg.in/yaml.v3"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandString substitutes every ${NAME} in s. The first unresolved name
// fails the whole substitution.
func expandString(s string, lookup LookupFunc) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		if missing != "" {
			return m
		}
		name := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := lookup(name)
		if !ok {
			missing = name
			return m
		}
		return v
	})
	if missing != "" {
		return "", missingEnv(missing)
	}
	return out, nil
}

// expandNode walks a parsed YAML document and substitutes placeholders in
// every scalar value, including values under keys the config does not know.
// Plain scalars get their tag cleared so "${N}" can still decode as a number.
func expandNode(n *yaml.Node, lookup LookupFunc) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if !placeholderPattern.MatchString(n.Value) {
			return nil
		}
		v, err := expandString(n.Value, lookup)
		if err != nil {
			return err
		}
		n.Value = v
		if n.Style == 0 {
			n.Tag = ""
		}
		return nil
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			if err := expandNode(n.Content[i], lookup); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, c := range n.Content {
			if err := expandNode(c, lookup); err != nil {
				return err
			}
		}
		return nil
	}
}

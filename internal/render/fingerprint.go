package render

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/frontmatter"
	"git.home.luguber.info/inful/docweave/internal/model"
)

// withFingerprint prepends a front matter header carrying the source,
// template and model plus a content fingerprint over header and body. The
// header holds no timestamps, so equal inputs give equal output.
func withFingerprint(content string, n *model.Narrative, rep *analysis.Representation, tmpl string) (string, error) {
	fields := map[string]any{
		"template": tmpl,
	}
	if rep != nil && rep.Artifact.Display() != "" {
		fields["source"] = rep.Artifact.Display()
	}
	if n != nil && n.Model != "" {
		fields["model"] = n.Model
	}
	if n != nil && n.Synthetic {
		fields["dry_run"] = true
	}

	fm, err := frontmatter.Encode(fields, "\n")
	if err != nil {
		return "", err
	}
	fields[mdfp.FingerprintField] = mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), content)

	out, err := frontmatter.Prepend(fields, []byte(content))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Fingerprint returns the fingerprint recorded in a rendered document's
// header and whether it still matches the content.
func Fingerprint(document string) (string, bool, error) {
	doc, err := frontmatter.Split([]byte(document))
	if err != nil || !doc.Present {
		return "", false, err
	}
	fields, err := doc.Fields()
	if err != nil {
		return "", false, err
	}
	recorded, _ := fields[mdfp.FingerprintField].(string)
	if recorded == "" {
		return "", false, nil
	}
	delete(fields, mdfp.FingerprintField)
	hashed, err := frontmatter.Encode(fields, "\n")
	if err != nil {
		return "", false, err
	}
	current := mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(hashed), "\n"), string(doc.Body))
	return recorded, current == recorded, nil
}

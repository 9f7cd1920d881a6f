package prompt

import (
	"fmt"
	"strings"
)

const baseInstructions = `You are a technical documentation expert. Generate comprehensive documentation for the source described in the user message.

Write a well-structured Markdown document. Make it clear, accurate and developer-friendly: use headers, code blocks and tables where appropriate, and prefer concrete examples taken from the source over generic advice. Do not invent endpoints, settings or behavior that the source does not show. If the source was truncated, document only what is present.`

// systemInstructions renders the fixed instructions plus the sections the
// selected template expects.
func systemInstructions(template string, sections []string) string {
	var b strings.Builder
	b.WriteString(baseInstructions)
	if len(sections) > 0 {
		b.WriteString("\n\nOrganize the document into the following sections, in this order, each as a level-2 heading")
		if template != "" {
			fmt.Fprintf(&b, " (template %q)", template)
		}
		b.WriteString(":\n")
		for i, s := range sections {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\nDo not add a document title; it is supplied by the template.")
	}
	return b.String()
}

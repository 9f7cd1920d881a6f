package prompt

import "unicode/utf8"

// charsPerToken is the rough rune-to-token ratio of English prose and code
// for BPE tokenizers.
const charsPerToken = 4

// EstimateTokens returns a conservative token estimate for s.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + charsPerToken - 1) / charsPerToken
}

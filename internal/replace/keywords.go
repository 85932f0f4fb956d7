// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"strings"

	"github.com/pdiddy/partswap/pkg/types"
)

// BuildKeywordVariants returns the plain keyword strings tried after every
// structured tier came back empty, in order:
//
//  1. baseKeywords alone
//  2. baseKeywords plus the top maxTokens values joined
//  3. baseKeywords plus each of the top maxTokens values on its own
//
// Empty strings and case-insensitive repeats are skipped.
func BuildKeywordVariants(baseKeywords string, remaining types.CriticalParameterList, maxTokens int) []string {
	base := collapseSpace(baseKeywords)

	var attempts []string
	attempts = append(attempts, base)
	attempts = append(attempts, joinKeywords(base, valueTokens(remaining, maxTokens)))
	for i := 0; i < len(remaining) && i < maxTokens; i++ {
		attempts = append(attempts, joinKeywords(base, valueTokens(remaining[i:i+1], 1)))
	}

	seen := make(map[string]bool, len(attempts))
	out := make([]string, 0, len(attempts))
	for _, kw := range attempts {
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// valueTokens returns up to max non-empty values with inner whitespace collapsed.
func valueTokens(params types.CriticalParameterList, max int) []string {
	var tokens []string
	for _, p := range params {
		if len(tokens) >= max {
			break
		}
		if t := collapseSpace(p.Value); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func joinKeywords(base string, tokens []string) string {
	if base == "" {
		return strings.Join(tokens, " ")
	}
	return strings.Join(append([]string{base}, tokens...), " ")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

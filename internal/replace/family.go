// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package replace

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/partswap/pkg/types"
)

var (
	digitRunRe     = regexp.MustCompile(`\d{3,}`)
	leadingDigitRe = regexp.MustCompile(`^\d{3,}`)
)

// NormalizePartNumber reduces a part number to uppercase ASCII letters and
// digits, for comparison only.
func NormalizePartNumber(pn string) string {
	var b strings.Builder
	b.Grow(len(pn))
	for _, r := range strings.ToUpper(pn) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BaseTokens returns the family tokens of a part number: every run of three
// or more digits in its normalized form, plus the leading digit run.
// Tokens are unique and sorted longest first, ties lexicographic.
func BaseTokens(partNumber string) []string {
	s := NormalizePartNumber(partNumber)
	set := make(map[string]bool)
	for _, tok := range digitRunRe.FindAllString(s, -1) {
		set[tok] = true
	}
	if lead := leadingDigitRe.FindString(s); lead != "" {
		set[lead] = true
	}

	tokens := make([]string, 0, len(set))
	for tok := range set {
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}

// containsBase reports whether a normalized part number contains any token.
func containsBase(normalized string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(normalized, tok) {
			return true
		}
	}
	return false
}

// FilterCandidates removes the original part from candidates and then
// applies the family mode. The input slice is not modified.
func FilterCandidates(candidates []types.Candidate, originalPN string, mode types.FamilyMode, tokens []string) []types.Candidate {
	original := NormalizePartNumber(originalPN)
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		norm := NormalizePartNumber(c.PartNumber)
		if norm == original {
			continue
		}
		switch mode {
		case types.FamilyExcludeBase:
			if containsBase(norm, tokens) {
				continue
			}
		case types.FamilyOnlyBase:
			if !containsBase(norm, tokens) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// MatchReasons renders up to max used parameters as "name = value".
func MatchReasons(used types.CriticalParameterList, max int) []string {
	n := len(used)
	if max >= 0 && n > max {
		n = max
	}
	reasons := make([]string, 0, n)
	for _, p := range used[:n] {
		reasons = append(reasons, p.String())
	}
	return reasons
}

// attachMatchReasons sets reasons on every candidate that has none of its own.
func attachMatchReasons(candidates []types.Candidate, reasons []string) {
	for i := range candidates {
		if len(candidates[i].MatchReasons) > 0 {
			continue
		}
		candidates[i].MatchReasons = append([]string(nil), reasons...)
	}
}

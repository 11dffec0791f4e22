// Package keyword extracts domain vocabulary hits from free-form query
// text. Extraction drives quota accounting: each matched keyword costs one
// unit of a user's daily budget.
package keyword

import (
	"sort"
	"strings"
)

// minTokenLen is the minimum length of a query token worth matching.
const minTokenLen = 3

// minSubstringKeywordLen is the exclusive lower bound on keyword length for
// substring matching. Short terms like "oil" or "gas" only match as whole
// tokens; allowing them as substrings would credit unrelated words
// ("spoiler", "gasket").
const minSubstringKeywordLen = 4

// exactSet answers exact-match lookups.
var exactSet = make(map[string]bool, len(vocabulary))

// substringOrder holds the keywords eligible for substring matching, sorted
// longest first, then lexicographically. Iteration order over a Go map
// is randomized, so substring matching over an unordered set would credit a
// different keyword run to run when a token contains several candidates.
// The longest-match-first rule makes extraction deterministic.
var substringOrder []string

func init() {
	for _, kw := range vocabulary {
		exactSet[kw] = true
		if len(kw) > minSubstringKeywordLen {
			substringOrder = append(substringOrder, kw)
		}
	}
	sort.Slice(substringOrder, func(i, j int) bool {
		if len(substringOrder[i]) != len(substringOrder[j]) {
			return len(substringOrder[i]) > len(substringOrder[j])
		}
		return substringOrder[i] < substringOrder[j]
	})
}

// Extract returns the domain keywords found in query, deduplicated, in
// first-occurrence order. Tokens are maximal runs of ASCII letters of
// length >= 3 in the lowercased input. A token matches either exactly, or
// by containing a keyword longer than four characters as a substring
// (longest keyword wins).
//
// Extract never returns an error; a query with no domain terms yields nil.
func Extract(query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	var found []string
	seen := make(map[string]bool)
	record := func(kw string) {
		if !seen[kw] {
			seen[kw] = true
			found = append(found, kw)
		}
	}

	for _, token := range tokenize(query) {
		if exactSet[token] {
			record(token)
			continue
		}
		for _, kw := range substringOrder {
			if strings.Contains(token, kw) {
				record(kw)
				break
			}
		}
	}
	return found
}

// Count returns the number of distinct domain keywords in query.
func Count(query string) int {
	return len(Extract(query))
}

// tokenize splits query into lowercase maximal ASCII letter runs of length
// >= minTokenLen. Digits, punctuation and non-ASCII characters are
// separators.
func tokenize(query string) []string {
	var tokens []string
	var run []byte
	flush := func() {
		if len(run) >= minTokenLen {
			tokens = append(tokens, string(run))
		}
		run = run[:0]
	}

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c >= 'a' && c <= 'z':
			run = append(run, c)
		case c >= 'A' && c <= 'Z':
			run = append(run, c+('a'-'A'))
		default:
			flush()
		}
	}
	flush()
	return tokens
}

package query

import (
	"strings"

	"github.com/pmorales/devbank-mcp/pkg/types"
)

const (
	// MaxTerms caps how many tokens feed the repository search
	MaxTerms = 5
	// MinTermLength drops tokens too short to be selective
	MinTermLength = 3
)

// stopwords are common words filtered out of natural-language queries
// before the tokens reach the substring search
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "they": {}, "been": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "about": {}, "into": {}, "show": {}, "find": {},
	"give": {}, "list": {}, "get": {}, "diagram": {}, "diagrams": {},
}

// ExtractTerms translates a natural-language query into up to MaxTerms
// lowercase alphanumeric tokens of at least MinTermLength characters.
// When the stopword pass removes every token, the unfiltered (still
// length-filtered) token list is used instead so a query like "show me
// the list" still searches for something.
func ExtractTerms(query string) []string {
	tokens := tokenize(query)

	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; !stop {
			filtered = append(filtered, tok)
		}
	}
	if len(filtered) == 0 {
		filtered = tokens
	}

	if len(filtered) > MaxTerms {
		filtered = filtered[:MaxTerms]
	}
	return filtered
}

// tokenize lowercases the query and splits it into alphanumeric runs,
// dropping tokens shorter than MinTermLength
func tokenize(query string) []string {
	lower := strings.ToLower(query)
	tokens := make([]string, 0)
	var current strings.Builder
	flush := func() {
		if current.Len() >= MinTermLength {
			tokens = append(tokens, current.String())
		}
		current.Reset()
	}
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// LevelsAtOrAbove maps a confidence threshold to the ordinal set of
// levels at or above it. An unknown threshold yields nil, meaning no
// confidence filtering.
func LevelsAtOrAbove(threshold types.ConfidenceLevel) []types.ConfidenceLevel {
	ord := threshold.Ordinal()
	if ord < 0 {
		return nil
	}
	levels := make([]types.ConfidenceLevel, 0, len(types.ConfidenceLevels)-ord)
	for _, level := range types.ConfidenceLevels[ord:] {
		levels = append(levels, level)
	}
	return levels
}

// Package query translates external search input into repository filters.
//
// ExtractTerms turns a natural-language query into a small set of
// lowercase alphanumeric tokens, filtering a curated stopword list and
// falling back to the unfiltered tokens when filtering would leave
// nothing to search for. LevelsAtOrAbove maps a confidence threshold to
// the inclusion set of levels used as a search filter.
package query

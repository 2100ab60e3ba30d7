package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pmorales/devbank-mcp/pkg/types"
)

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "stopwords removed",
			query: "show me the auth service diagram",
			want:  []string{"auth", "service"},
		},
		{
			name:  "short tokens dropped",
			query: "db io auth",
			want:  []string{"auth"},
		},
		{
			name:  "lowercased and split on punctuation",
			query: "Payment-Gateway/Billing",
			want:  []string{"payment", "gateway", "billing"},
		},
		{
			name:  "capped at five terms",
			query: "alpha beta gamma delta epsilon zeta eta",
			want:  []string{"alpha", "beta", "gamma", "delta", "epsilon"},
		},
		{
			name:  "all stopwords falls back to unfiltered tokens",
			query: "show me the list",
			want:  []string{"show", "the", "list"},
		},
		{
			name:  "numbers kept",
			query: "oauth2 flow",
			want:  []string{"oauth2", "flow"},
		},
		{
			name:  "empty query",
			query: "",
			want:  []string{},
		},
		{
			name:  "only short tokens",
			query: "a b of",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTerms(tt.query))
		})
	}
}

func TestLevelsAtOrAbove(t *testing.T) {
	assert.Equal(t,
		[]types.ConfidenceLevel{types.ConfidenceHigh, types.ConfidenceVerified},
		LevelsAtOrAbove(types.ConfidenceHigh))

	assert.Equal(t,
		[]types.ConfidenceLevel{types.ConfidenceVerified},
		LevelsAtOrAbove(types.ConfidenceVerified))

	// The lowest threshold includes everything
	assert.Len(t, LevelsAtOrAbove(types.ConfidenceLow), 4)

	// Unknown thresholds disable confidence filtering
	assert.Nil(t, LevelsAtOrAbove(types.ConfidenceLevel("certain")))
	assert.Nil(t, LevelsAtOrAbove(""))
}

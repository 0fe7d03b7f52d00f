package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "(none)", JoinOrNone(nil))
	assert.Equal(t, "(none)", JoinOrNone([]string{}))
	assert.Equal(t, "shopify", JoinOrNone([]string{"shopify"}))
	assert.Equal(t, "shopify, nuorder, quickbooks", JoinOrNone([]string{"shopify", "nuorder", "quickbooks"}))
}

func TestJoinOrDefault(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		def   string
		want  string
	}{
		{
			name:  "empty slice returns default",
			items: []string{},
			def:   "N/A",
			want:  "N/A",
		},
		{
			name:  "empty slice with empty default",
			items: []string{},
			def:   "",
			want:  "",
		},
		{
			name:  "items returned regardless of default",
			items: []string{"metrics", "sync"},
			def:   "default",
			want:  "metrics, sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrDefault(tt.items, tt.def))
		})
	}
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "issues", Pluralize(0, "issue", "issues"))
	assert.Equal(t, "issue", Pluralize(1, "issue", "issues"))
	assert.Equal(t, "issues", Pluralize(2, "issue", "issues"))
	assert.Equal(t, "issues", Pluralize(-1, "issue", "issues"))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "sync", 4},
		{"sync", "", 4},
		{"sync", "sync", 0},
		{"sync", "snyc", 2},      // transposition (2 edits)
		{"metric", "metrics", 1}, // insertion
		{"metrics", "metric", 1}, // deletion
		{"sync", "Sync", 1},      // case difference
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"test", "tests", "build", "deploy", "lint", "verify"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"typo suggests correct", "tset", []string{"test"}},
		{"extra char suggests both", "testt", []string{"test", "tests"}},
		{"missing char", "tes", []string{"test", "tests"}},
		{"no close match returns nil", "xyz", nil},
		{"empty input returns nil", "", nil},
		{"case insensitive", "TEST", []string{"test", "tests"}},
		{"exact match returns it", "build", []string{"build"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, candidates, 3))
		})
	}
}

func TestSuggestSimilar_Feeds(t *testing.T) {
	feeds := []string{"metrics", "sync"}
	assert.Equal(t, []string{"sync"}, SuggestSimilar("snyc", feeds, 3))
	assert.Equal(t, []string{"metrics"}, SuggestSimilar("metric", feeds, 3))
	assert.Nil(t, SuggestSimilar("orders", feeds, 3))
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	assert.Nil(t, SuggestSimilar("sync", nil, 3))
	assert.Nil(t, SuggestSimilar("sync", []string{}, 3))
}

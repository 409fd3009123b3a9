// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: map[string]any{"a": 1.0},
		},
		{
			name: "json fence",
			text: "```json\n{\"a\":1}\n```",
			want: map[string]any{"a": 1.0},
		},
		{
			name: "plain fence with surrounding whitespace",
			text: "  \n```\n{\"a\": \"x\"}\n```\n ",
			want: map[string]any{"a": "x"},
		},
		{
			name: "prose around object",
			text: "Sure! Here is the result:\n{\"a\": {\"b\": 2}}\nHope this helps.",
			want: map[string]any{"a": map[string]any{"b": 2.0}},
		},
		{
			name: "braces inside strings",
			text: `{"a": "curly } brace"}`,
			want: map[string]any{"a": "curly } brace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no braces", "I could not find any relevant papers."},
		{"empty", ""},
		{"invalid json between braces", "result: {not: valid}"},
		{"fenced but broken", "```json\n{\"a\": }\n```"},
		{"closing before opening", "} oops {"},
		{"array without object", `[1, 2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractJSON(tt.text)
			assert.ErrorIs(t, err, ErrNoJSONObject)
		})
	}
}

func TestParse(t *testing.T) {
	text := "```json\n" + `{
  "top_papers": [
    {"id": " P03 ", "summary": " Three sentences. "},
    {"id": "P01", "summary": "One."},
    {"id": "P07", "summary": "Seven."},
    {"id": "P02", "summary": "Two."},
    {"id": "P05", "summary": "Five."},
    {"id": "P04", "summary": "Four."}
  ],
  "general_trends": ["t1", "t2"],
  "general_concept": ["g1"],
  "specific_concept": ["s1", "", "s3"]
}` + "\n```"

	sel, err := Parse(text)
	require.NoError(t, err)

	require.Len(t, sel.TopPapers, types.MaxTopPapers)
	assert.Equal(t, types.PaperSummary{ID: "P03", Summary: "Three sentences."}, sel.TopPapers[0])
	assert.Equal(t, "P05", sel.TopPapers[4].ID)
	assert.Equal(t, []string{"t1", "t2"}, sel.GeneralTrends)
	assert.Equal(t, []string{"g1"}, sel.GeneralConcept)
	assert.Equal(t, []string{"s1", "", "s3"}, sel.SpecificConcept)
}

func TestParse_Coercions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.Selection
	}{
		{
			name: "trends string becomes one bullet",
			text: `{"top_papers": [], "general_trends": "Everything is single-cell now."}`,
			want: types.Selection{
				TopPapers:     nil,
				GeneralTrends: []string{"Everything is single-cell now."},
			},
		},
		{
			name: "missing top_papers selects nothing",
			text: `{"general_trends": ["a"]}`,
			want: types.Selection{GeneralTrends: []string{"a"}},
		},
		{
			name: "non-object entries keep their slot with empty id",
			text: `{"top_papers": ["P01", {"id": 2, "summary": null}]}`,
			want: types.Selection{TopPapers: []types.PaperSummary{{}, {ID: "2"}}},
		},
		{
			name: "numeric bullets are stringified",
			text: `{"general_concept": [1.5, true, {"k": "v"}]}`,
			want: types.Selection{GeneralConcept: []string{"1.5", "true", `{"k":"v"}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MalformedTopPapers(t *testing.T) {
	for _, text := range []string{
		`{"top_papers": "P01, P02"}`,
		`{"top_papers": {"id": "P01"}}`,
		`{"top_papers": null}`,
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrMalformedSelection, text)
	}
}

func TestParse_NoJSON(t *testing.T) {
	_, err := Parse("no json here")
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

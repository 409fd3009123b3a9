// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MaxTopPapers is the largest number of papers a digest features.
const MaxTopPapers = 5

// PaperSummary is one paper chosen by the model with its short summary.
type PaperSummary struct {
	// ID references a Paper.ID from the same run. Unknown IDs are ignored
	// when the digest is rendered.
	ID string `json:"id" yaml:"id"`

	// Summary is the model-written summary, roughly three sentences.
	Summary string `json:"summary" yaml:"summary"`
}

// Selection is the validated reply from the model.
type Selection struct {
	// TopPapers holds at most MaxTopPapers entries in the model's order.
	TopPapers []PaperSummary `json:"top_papers" yaml:"top_papers"`

	// GeneralTrends are field-wide observations across the submitted papers.
	GeneralTrends []string `json:"general_trends" yaml:"general_trends"`

	// GeneralConcept explains the randomly picked topic of the day.
	GeneralConcept []string `json:"general_concept" yaml:"general_concept"`

	// SpecificConcept explains a concept drawn from the selected papers.
	SpecificConcept []string `json:"specific_concept" yaml:"specific_concept"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the ranking and summarization instructions sent to
// the model.
package prompt

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// Field limits applied to each paper line, in characters.
const (
	TitleLimit    = 220
	CategoryLimit = 60
	AbstractLimit = 900
)

// MinPapers is the floor on how many papers are offered to the model when
// that many are available.
const MinPapers = 10

// Ellipsis marks a clipped field.
const Ellipsis = "…"

var whitespace = regexp.MustCompile(`\s+`)

// Clip collapses whitespace runs to one space, trims, and cuts s to n
// characters, appending Ellipsis only when something was removed.
func Clip(s string, n int) string {
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + Ellipsis
}

// Subset returns the papers offered to the model: the first limit, raised
// to MinPapers, and never more than are available.
func Subset(papers []types.Paper, limit int) []types.Paper {
	n := min(max(MinPapers, limit), len(papers))
	return papers[:n]
}

// digestPromptTmpl asks for five ranked papers, trends, and two concept
// explainers as a single JSON object.
var digestPromptTmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"clip": Clip,
}).Parse(`You are a research assistant helping rank bioRxiv papers for a daily email digest.

USER_INTERESTS:
{{.Interests}}

TASK:
- Select the 5 most relevant papers to USER_INTERESTS. Favour papers which target major problems in their respective field, make novel contributions to their field, and have solid methodological rigor relative to the other papers in the list.
- For each selected paper: produce a three sentence summary that is understandable to a second year undergraduate student in the field.
- After this, write a short 'general_trends' section (3–6 bullet points) describing what existing paradigms and opinions are changed from the results of these papers. Think beyond the first-order conclusions of the paper, and think about what the consequences of these discoveries are (but do not speculate too much).
- Along with the 'general_trends' section, include a 'general_concept' section explaining {{.Topic}}. Write 3–4 bullet points only. The first bullet should immediately begin explaining the concept; do not use a title, heading, or naming-only bullet. Bullets should emphasize structure, mechanisms, formal insights, or non-obvious implications, not introductory definitions. Use plain text only (no markdown, no headings, no formatting). Aim for a level of depth appropriate for a well-educated reader who wants a concise but nontrivial conceptual insight rather than a textbook overview.
- Finally, include a 'specific_concept' section describing any ONE advanced concept (graduate level) from USER_INTERESTS. Choose a concept that is non-introductory, and non-textbook (avoid canonical topics such as allostery, basic Bayesian inference, classic signaling pathways, etc.). The concept does not need to appear in or relate to any of the papers; treat this section as independent enrichment. After the concepts are generated, choose exactly one to write about. Write 3–4 bullet points only. The first bullet should immediately begin explaining the concept; do not use a title or heading bullet. Bullets should focus on mechanism, formal structure, or nuanced implications, not definitions aimed at beginners. Use plain text only (no markdown, no headings, no bold/italics).

OUTPUT: Return ONLY valid JSON with this schema:
{
  "top_papers": [
    {"id": "P01", "summary": "..."},
    {"id": "P02", "summary": "..."}
  ],
  "general_trends": ["...", "..."],
  "general_concept": ["...", "..."],
  "specific_concept": ["...", "..."]
}

PAPERS:
{{- range .Papers}}
- [{{.ID}}] Title: {{clip .Title $.TitleLimit}} | Category: {{clip .Category $.CategoryLimit}} | Date: {{.Date}} | DOI: {{.DOI}}
  Abstract: {{clip .Abstract $.AbstractLimit}}
{{- end}}`))

// Build renders the prompt for papers. Interests are trimmed; paper fields
// are clipped to TitleLimit, CategoryLimit, and AbstractLimit.
func Build(interests string, papers []types.Paper, topic string) (string, error) {
	var buf bytes.Buffer
	err := digestPromptTmpl.Execute(&buf, struct {
		Interests     string
		Topic         string
		Papers        []types.Paper
		TitleLimit    int
		CategoryLimit int
		AbstractLimit int
	}{
		Interests:     strings.TrimSpace(interests),
		Topic:         topic,
		Papers:        papers,
		TitleLimit:    TitleLimit,
		CategoryLimit: CategoryLimit,
		AbstractLimit: AbstractLimit,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest renders the model's selection as an HTML email body.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// PlainTextFallback is the text/plain part for clients without HTML support.
const PlainTextFallback = "Your email client does not support HTML. Please view this digest in an HTML-capable client."

// Subject returns the email subject for a digest generated at now.
func Subject(now time.Time) string {
	return fmt.Sprintf("bioRxiv digest: (%s)", now.Format("2006-01-02"))
}

// Input carries everything one digest shows.
type Input struct {
	// Now is the generation time in the digest's zone.
	Now time.Time

	// Zone names the zone shown next to the generation time.
	Zone string

	// Topic is the general concept of the day.
	Topic string

	// Papers are the papers offered to the model; selections are resolved
	// against their IDs.
	Papers []types.Paper

	Selection types.Selection
}

// item is one rendered paper section.
type item struct {
	Number  int
	Paper   types.Paper
	URL     string
	Summary string
}

type view struct {
	Date            string
	Time            string
	Zone            string
	Topic           string
	Items           []item
	Trends          []string
	GeneralConcept  []string
	SpecificConcept []string
}

var digestTmpl = template.Must(template.New("digest").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.35;">
    <h2 style="margin: 0 0 8px 0;">bioRxiv daily digest for {{.Date}}</h2>
    <div class="generated" style="color:#555; font-size: 12px; margin-bottom: 16px;">
      Generated at {{.Time}} ({{.Zone}})
    </div>
{{range .Items}}
    <div class="paper" style="margin: 0 0 18px 0;">
      <h3 style="margin: 0 0 6px 0;">{{.Number}}. <a href="{{.URL}}">{{.Paper.Title}}</a></h3>
      <div style="font-size: 13px; color: #333;">
        <div class="authors"><b>Authors:</b> {{.Paper.Authors}}</div>
        <div class="meta"><b>Category:</b> {{.Paper.Category}} &nbsp; <b>Date:</b> {{.Paper.Date}} &nbsp; <b>DOI:</b> <span class="doi">{{.Paper.DOI}}v{{.Paper.Version}}</span></div>
      </div>
      <p class="summary" style="margin: 8px 0 6px 0;"><b>AI Summary:</b> {{.Summary}}</p>
      <p class="abstract" style="margin: 0;"><b>Abstract:</b><br/>{{.Paper.Abstract}}</p>
    </div>
{{end}}
    <hr style="margin: 22px 0;" />
    <h3 style="margin: 0 0 8px 0;">General Trends</h3>
    <ul class="trends" style="margin: 0; padding-left: 18px;">
      {{range .Trends}}<li>{{.}}</li>{{end}}
    </ul>

    <hr style="margin: 22px 0;" />
    <h3 class="general-concept" style="margin: 0 0 8px 0;">General Concept: {{.Topic}}</h3>
    <ul class="general" style="margin: 0; padding-left: 18px;">
      {{range .GeneralConcept}}<li>{{.}}</li>{{end}}
    </ul>

    <hr style="margin: 22px 0;" />
    <h3 style="margin: 0 0 8px 0;">Specific Concept</h3>
    <ul class="specific" style="margin: 0; padding-left: 18px;">
      {{range .SpecificConcept}}<li>{{.}}</li>{{end}}
    </ul>

    <div class="footer" style="margin-top: 18px; color:#777; font-size: 12px;">
      Generated by biorxiv-digest with Gemini and the bioRxiv API.
    </div>
  </body>
</html>
`))

// Render produces the HTML body. Selected IDs that do not match a paper
// are skipped and the remaining sections are numbered from 1. Blank
// bullets are dropped. All text is HTML-escaped.
func Render(in Input) (string, error) {
	byID := make(map[string]types.Paper, len(in.Papers))
	for _, p := range in.Papers {
		byID[p.ID] = p
	}

	v := view{
		Date:            in.Now.Format("2006-01-02"),
		Time:            in.Now.Format("2006-01-02 15:04 MST"),
		Zone:            in.Zone,
		Topic:           in.Topic,
		Trends:          nonBlank(in.Selection.GeneralTrends),
		GeneralConcept:  nonBlank(in.Selection.GeneralConcept),
		SpecificConcept: nonBlank(in.Selection.SpecificConcept),
	}
	if v.Zone == "" {
		v.Zone = in.Now.Location().String()
	}

	for _, sel := range in.Selection.TopPapers {
		p, ok := byID[strings.TrimSpace(sel.ID)]
		if !ok {
			continue
		}
		v.Items = append(v.Items, item{
			Number:  len(v.Items) + 1,
			Paper:   p,
			URL:     p.URL(),
			Summary: sel.Summary,
		})
	}

	var buf bytes.Buffer
	if err := digestTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return buf.String(), nil
}

// Count reports how many selected papers Render will show.
func Count(in Input) int {
	known := make(map[string]bool, len(in.Papers))
	for _, p := range in.Papers {
		known[p.ID] = true
	}
	n := 0
	for _, sel := range in.Selection.TopPapers {
		if known[strings.TrimSpace(sel.ID)] {
			n++
		}
	}
	return n
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

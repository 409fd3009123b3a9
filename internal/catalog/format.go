// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-60s  %-24s  %s\n", "ID", "Date", "Title", "Category", "DOI")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, p := range papers {
		fmt.Fprintf(w, "%-4s  %-10s  %-60s  %-24s  %s\n",
			p.ID, p.Date, truncate(p.Title, 60), truncate(p.Category, 24), p.DOI)
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers []types.Paper, w io.Writer) error {
	if papers == nil {
		papers = []types.Paper{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

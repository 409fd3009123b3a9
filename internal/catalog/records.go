// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// Record is one catalog entry with every field coerced to a trimmed string.
type Record map[string]string

// Page is one decoded response from the details API.
type Page struct {
	Records []Record

	// Size counts every row in the page, including rows that were not
	// JSON objects, so the cursor advances the way the API expects.
	Size int

	Total    int
	HasTotal bool
}

// parsePage accepts either an envelope with a "collection" array or a bare
// array of records. The total comes from messages[0].total when it is a
// number or a digit string.
func parsePage(body any) Page {
	var rows []any
	var page Page

	switch v := body.(type) {
	case []any:
		rows = v
	case map[string]any:
		rows, _ = v["collection"].([]any)
		page.Total, page.HasTotal = parseTotal(v["messages"])
	}

	page.Size = len(rows)
	for _, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			continue
		}
		rec := make(Record, len(obj))
		for k, val := range obj {
			rec[k] = coerce(val)
		}
		page.Records = append(page.Records, rec)
	}
	return page
}

func parseTotal(messages any) (int, bool) {
	list, ok := messages.([]any)
	if !ok || len(list) == 0 {
		return 0, false
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return 0, false
	}

	switch t := first["total"].(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(t), true
	case string:
		s := strings.TrimSpace(t)
		if s != "" && strings.Trim(s, "0123456789") == "" {
			if n, err := strconv.Atoi(s); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// coerce renders a decoded JSON value as trimmed text. Numbers keep their
// literal spelling and null becomes the empty string.
func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// versionNumber parses a record version; unparseable versions rank as -1.
func versionNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}

// Dedup keeps one record per DOI: the one with the highest integer version,
// or the first seen on ties. Records without a DOI are dropped. The result
// keeps the order in which each DOI was first seen.
func Dedup(records []Record) []Record {
	index := make(map[string]int)
	var out []Record

	for _, rec := range records {
		doi := rec["doi"]
		if doi == "" {
			continue
		}
		i, ok := index[doi]
		if !ok {
			index[doi] = len(out)
			out = append(out, rec)
			continue
		}
		if versionNumber(rec["version"]) > versionNumber(out[i]["version"]) {
			out[i] = rec
		}
	}
	return out
}

// Papers converts deduplicated records into papers, sorts them by date
// descending (stable for equal dates), and assigns IDs P01.. in that order.
func Papers(records []Record, server string) []types.Paper {
	papers := make([]types.Paper, 0, len(records))
	for _, rec := range records {
		papers = append(papers, types.Paper{
			Title:    rec["title"],
			DOI:      rec["doi"],
			Version:  rec["version"],
			Date:     rec["date"],
			Category: rec["category"],
			Authors:  rec["authors"],
			Abstract: rec["abstract"],
			Server:   server,
		})
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].Date > papers[j].Date
	})

	for i := range papers {
		papers[i].ID = types.FormatID(i + 1)
	}
	return papers
}

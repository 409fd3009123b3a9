// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection extracts the JSON object from a model reply and turns
// it into a validated types.Selection.
package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

var (
	// ErrNoJSONObject is returned when no parseable JSON object is found.
	ErrNoJSONObject = errors.New("model response did not contain a JSON object")

	// ErrMalformedSelection is returned when top_papers is not a list.
	ErrMalformedSelection = errors.New("model returned invalid 'top_papers' format")
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// ExtractJSON accepts a bare JSON object or one wrapped in a Markdown code
// fence. When the cleaned text is not itself an object, the span from the
// first '{' to the last '}' is parsed instead.
func ExtractJSON(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = leadingFence.ReplaceAllString(cleaned, "")
	cleaned = trailingFence.ReplaceAllString(cleaned, "")

	candidate := cleaned
	if !strings.HasPrefix(cleaned, "{") || !strings.HasSuffix(cleaned, "}") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end < start {
			return nil, ErrNoJSONObject
		}
		candidate = cleaned[start : end+1]
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONObject, err)
	}
	return obj, nil
}

// Parse extracts and validates a selection. A missing top_papers key means
// no papers were selected; any other non-list value is an error. Only the
// first types.MaxTopPapers entries are kept. Bullet sections that are not
// lists become a single bullet holding their text.
func Parse(text string) (types.Selection, error) {
	obj, err := ExtractJSON(text)
	if err != nil {
		return types.Selection{}, err
	}

	var sel types.Selection

	if raw, ok := obj["top_papers"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return types.Selection{}, fmt.Errorf("%w: got %T", ErrMalformedSelection, raw)
		}
		if len(list) > types.MaxTopPapers {
			list = list[:types.MaxTopPapers]
		}
		for _, entry := range list {
			var ps types.PaperSummary
			if m, ok := entry.(map[string]any); ok {
				ps.ID = strings.TrimSpace(stringify(m["id"]))
				ps.Summary = strings.TrimSpace(stringify(m["summary"]))
			}
			sel.TopPapers = append(sel.TopPapers, ps)
		}
	}

	sel.GeneralTrends = bullets(obj["general_trends"])
	sel.GeneralConcept = bullets(obj["general_concept"])
	sel.SpecificConcept = bullets(obj["specific_concept"])
	return sel, nil
}

// bullets coerces a section value into a list of strings.
func bullets(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(t)}
	}
}

// stringify renders a decoded JSON value as text; null becomes "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

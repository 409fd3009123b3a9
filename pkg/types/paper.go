// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the biorxiv-digest pipeline.
package types

import "fmt"

// Paper is one deduplicated preprint from the catalog. Values are built once
// by the catalog fetcher and never mutated afterwards.
type Paper struct {
	// ID is the run-local identifier (P01, P02, ...) used to reference the
	// paper in the prompt and in the model's reply.
	ID string `json:"id" yaml:"id"`

	// Title is the preprint title as returned by the catalog.
	Title string `json:"title" yaml:"title"`

	// DOI is the preprint DOI (e.g. "10.1101/2024.01.01.123456").
	DOI string `json:"doi" yaml:"doi"`

	// Version is the catalog version number kept as text ("1", "2", ...).
	Version string `json:"version" yaml:"version"`

	// Date is the posting date as an ISO date string (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`

	// Category is the subject category (e.g. "neuroscience").
	Category string `json:"category" yaml:"category"`

	// Authors is the author list as a single "Last, F.; Last, F." string.
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the full abstract text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Server is the catalog the paper came from ("biorxiv" or "medrxiv").
	Server string `json:"server,omitempty" yaml:"server,omitempty"`
}

// URL returns the public landing page for the paper. Versioned content
// links are preferred; a bare DOI falls back to the doi.org resolver.
func (p Paper) URL() string {
	if p.DOI == "" {
		return ""
	}
	if p.Version != "" {
		host := "www.biorxiv.org"
		if p.Server == "medrxiv" {
			host = "www.medrxiv.org"
		}
		return fmt.Sprintf("https://%s/content/%sv%s", host, p.DOI, p.Version)
	}
	return "https://doi.org/" + p.DOI
}

// FormatID returns the identifier for the paper at 1-based position n.
func FormatID(n int) string {
	return fmt.Sprintf("P%02d", n)
}

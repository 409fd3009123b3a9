// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "biorxiv_digest"

// Run outcomes recorded by RecordRun.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomePreview = "preview"
	OutcomeFailed  = "failed"
)

// Metrics holds the counters for one process. They live on a private
// registry so a run can be dumped as a node_exporter textfile without a
// listening endpoint. All methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	// CatalogPages counts catalog pages fetched.
	CatalogPages prometheus.Counter

	// CatalogRecords counts raw records received before dedup.
	CatalogRecords prometheus.Counter

	// CatalogDuplicates counts records dropped by DOI dedup.
	CatalogDuplicates prometheus.Counter

	// Papers is the number of unique papers found in the window.
	Papers prometheus.Gauge

	// PromptPapers is the number of papers sent to the model.
	PromptPapers prometheus.Gauge

	// ModelCalls counts generateContent calls by model and result.
	ModelCalls *prometheus.CounterVec

	// Selected is the number of papers rendered in the digest.
	Selected prometheus.Gauge

	// Runs counts finished runs by outcome.
	Runs *prometheus.CounterVec

	// RunDuration is the wall time of the last run in seconds.
	RunDuration prometheus.Gauge

	// LastSuccess is the Unix time of the last run that did not fail.
	LastSuccess prometheus.Gauge
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CatalogPages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "catalog", Name: "pages_total",
			Help: "Catalog pages fetched.",
		}),
		CatalogRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "catalog", Name: "records_total",
			Help: "Catalog records received before deduplication.",
		}),
		CatalogDuplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "catalog", Name: "duplicates_total",
			Help: "Catalog records dropped as duplicate or superseded versions.",
		}),
		Papers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "papers",
			Help: "Unique papers in the lookback window.",
		}),
		PromptPapers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "prompt_papers",
			Help: "Papers included in the model prompt.",
		}),
		ModelCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "model", Name: "calls_total",
			Help: "generateContent calls by model and result.",
		}, []string{"model", "result"}),
		Selected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "selected_papers",
			Help: "Papers rendered in the digest.",
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Finished runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last run that did not fail.",
		}),
	}
}

// RecordPage counts one catalog page of rows records.
func (m *Metrics) RecordPage(rows int) {
	if m == nil {
		return
	}
	m.CatalogPages.Inc()
	m.CatalogRecords.Add(float64(rows))
}

// RecordDedup records how many of in records survived as out papers.
func (m *Metrics) RecordDedup(in, out int) {
	if m == nil {
		return
	}
	if in > out {
		m.CatalogDuplicates.Add(float64(in - out))
	}
	m.Papers.Set(float64(out))
}

// RecordModelCall counts one model call.
func (m *Metrics) RecordModelCall(model string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ModelCalls.WithLabelValues(model, result).Inc()
}

// RecordRun counts a finished run and its duration.
func (m *Metrics) RecordRun(outcome string, started, finished time.Time) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Set(finished.Sub(started).Seconds())
	if outcome != OutcomeFailed {
		m.LastSuccess.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biorxiv-digest/internal/catalog"
	"github.com/pdiddy/biorxiv-digest/internal/mailer"
	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/internal/selection"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// --- fakes ---

type fakeFetcher struct {
	papers []types.Paper
	err    error
	query  catalog.Query
}

func (f *fakeFetcher) Fetch(_ context.Context, q catalog.Query) ([]types.Paper, error) {
	f.query = q
	return f.papers, f.err
}

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.reply, g.err
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, m mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m)
	return nil
}

type fixedTopic string

func (f fixedTopic) Pick() string { return string(f) }

func makePapers(n int) []types.Paper {
	out := make([]types.Paper, n)
	for i := range out {
		out[i] = types.Paper{
			ID:       types.FormatID(i + 1),
			Title:    fmt.Sprintf("Paper %d", i+1),
			DOI:      fmt.Sprintf("10.1101/2026.10.16.%06d", i+1),
			Version:  "1",
			Date:     "2026-10-16",
			Category: "genomics",
			Authors:  "Doe, J.",
			Abstract: "Abstract.",
			Server:   "biorxiv",
		}
	}
	return out
}

func testConfig() *types.DigestConfig {
	return &types.DigestConfig{
		Interests: "regulatory genomics",
		Timezone:  "America/Toronto",
		Catalog: types.CatalogConfig{
			Server:       "biorxiv",
			Category:     "genomics",
			LookbackDays: 1,
		},
		AI: types.AIConfig{MaxPapers: 60},
		Email: types.EmailConfig{
			To:   "a@example.org, b@example.org",
			Cc:   "c@example.org",
			Bcc:  "d@example.org",
			From: "bot@example.org",
		},
	}
}

const goodReply = "```json\n" + `{
  "top_papers": [
    {"id": "P02", "summary": "Second paper summary."},
    {"id": "P61", "summary": "Not offered to the model."},
    {"id": "P01", "summary": "First paper summary."}
  ],
  "general_trends": ["Trend"],
  "general_concept": ["Concept"],
  "specific_concept": ["Specific"]
}` + "\n```"

func newRunner(f *fakeFetcher, g *fakeGenerator, s *fakeSender) *Runner {
	return &Runner{
		Fetcher:   f,
		Generator: g,
		Sender:    s,
		Topics:    fixedTopic("Chromatin remodeling"),
		Now:       func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) },
		Logger:    zerolog.Nop(),
		Metrics:   observability.NewMetrics(),
	}
}

func TestRun_SendsDigest(t *testing.T) {
	f := &fakeFetcher{papers: makePapers(125)}
	g := &fakeGenerator{reply: goodReply}
	s := &fakeSender{}
	r := newRunner(f, g, s)

	rep, err := r.Run(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, catalog.Query{Server: "biorxiv", Category: "genomics", From: "2026-10-15", To: "2026-10-16"}, f.query)
	assert.Equal(t, 125, rep.Papers)
	assert.Equal(t, 60, rep.Offered)
	assert.Equal(t, 2, rep.Selected)
	assert.True(t, rep.Sent)
	assert.Equal(t, "Chromatin remodeling", rep.Topic)

	assert.Contains(t, g.prompt, "[P60]")
	assert.NotContains(t, g.prompt, "[P61]")
	assert.Contains(t, g.prompt, "explaining Chromatin remodeling.")

	require.Len(t, s.sent, 1)
	msg := s.sent[0]
	assert.Equal(t, "bioRxiv digest: (2026-10-16)", msg.Subject)
	assert.Equal(t, []string{"a@example.org", "b@example.org"}, msg.To)
	assert.Equal(t, []string{"c@example.org"}, msg.Cc)
	assert.Equal(t, []string{"d@example.org"}, msg.Bcc)
	assert.Equal(t, "bot@example.org", msg.From)
	assert.Contains(t, msg.Text, "does not support HTML")
	assert.Contains(t, msg.HTML, "1. <a href=\"https://www.biorxiv.org/content/10.1101/2026.10.16.000002v1\">Paper 2</a>")
	assert.Contains(t, msg.HTML, "2. <a href=\"https://www.biorxiv.org/content/10.1101/2026.10.16.000001v1\">Paper 1</a>")
	assert.NotContains(t, msg.HTML, "Not offered to the model.")
	assert.Contains(t, msg.HTML, "General Concept: Chromatin remodeling")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.Runs.WithLabelValues(observability.OutcomeSent)))
	assert.Equal(t, 60.0, testutil.ToFloat64(r.Metrics.PromptPapers))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Metrics.Selected))
}

func TestRun_WindowUsesConfiguredZone(t *testing.T) {
	f := &fakeFetcher{}
	r := newRunner(f, &fakeGenerator{}, &fakeSender{})
	// 03:00 UTC on the 16th is still the 15th in Toronto.
	r.Now = func() time.Time { return time.Date(2026, 10, 16, 3, 0, 0, 0, time.UTC) }

	cfg := testConfig()
	cfg.Catalog.LookbackDays = 2
	rep, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-13", rep.From)
	assert.Equal(t, "2026-10-15", rep.To)
}

func TestRun_NoPapers(t *testing.T) {
	g := &fakeGenerator{reply: goodReply}
	s := &fakeSender{}
	r := newRunner(&fakeFetcher{}, g, s)

	rep, err := r.Run(context.Background(), testConfig())
	require.NoError(t, err)
	assert.True(t, rep.Skipped)
	assert.Zero(t, g.calls)
	assert.Empty(t, s.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.Runs.WithLabelValues(observability.OutcomeSkipped)))
}

func TestRun_SmallWindowOffersAll(t *testing.T) {
	g := &fakeGenerator{reply: `{"top_papers": [{"id": "P03", "summary": "x"}]}`}
	s := &fakeSender{}
	r := newRunner(&fakeFetcher{papers: makePapers(4)}, g, s)

	cfg := testConfig()
	cfg.AI.MaxPapers = 2
	rep, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Offered)
	assert.Equal(t, 1, rep.Selected)
}

func TestRun_Failures(t *testing.T) {
	fetchErr := errors.New("catalog down")
	genErr := errors.New("both models failed")
	sendErr := errors.New("relay refused")

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		gen     *fakeGenerator
		sender  *fakeSender
		wantErr error
	}{
		{
			name:    "fetch error",
			fetcher: &fakeFetcher{err: fetchErr},
			gen:     &fakeGenerator{},
			sender:  &fakeSender{},
			wantErr: fetchErr,
		},
		{
			name:    "model error",
			fetcher: &fakeFetcher{papers: makePapers(3)},
			gen:     &fakeGenerator{err: genErr},
			sender:  &fakeSender{},
			wantErr: genErr,
		},
		{
			name:    "reply without json",
			fetcher: &fakeFetcher{papers: makePapers(3)},
			gen:     &fakeGenerator{reply: "I cannot help with that."},
			sender:  &fakeSender{},
			wantErr: selection.ErrNoJSONObject,
		},
		{
			name:    "top_papers not a list",
			fetcher: &fakeFetcher{papers: makePapers(3)},
			gen:     &fakeGenerator{reply: `{"top_papers": "P01"}`},
			sender:  &fakeSender{},
			wantErr: selection.ErrMalformedSelection,
		},
		{
			name:    "send error",
			fetcher: &fakeFetcher{papers: makePapers(3)},
			gen:     &fakeGenerator{reply: goodReply},
			sender:  &fakeSender{err: sendErr},
			wantErr: sendErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(tt.fetcher, tt.gen, tt.sender)
			rep, err := r.Run(context.Background(), testConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, rep.Sent)
			assert.Empty(t, tt.sender.sent)
			assert.Equal(t, 1.0, testutil.ToFloat64(r.Metrics.Runs.WithLabelValues(observability.OutcomeFailed)))
		})
	}
}

func TestRun_Preview(t *testing.T) {
	s := &fakeSender{}
	r := newRunner(&fakeFetcher{papers: makePapers(12)}, &fakeGenerator{reply: goodReply}, s)
	var buf bytes.Buffer
	r.Preview = &buf

	rep, err := r.Run(context.Background(), testConfig())
	require.NoError(t, err)

	assert.False(t, rep.Sent)
	assert.Empty(t, s.sent)
	assert.True(t, strings.HasPrefix(buf.String(), "<html>"))
	assert.Equal(t, observability.OutcomePreview, rep.Outcome())
}

func TestRun_BadTimezone(t *testing.T) {
	f := &fakeFetcher{papers: makePapers(1)}
	r := newRunner(f, &fakeGenerator{}, &fakeSender{})
	cfg := testConfig()
	cfg.Timezone = "Nowhere/Special"

	_, err := r.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Empty(t, f.query.Server, "nothing is fetched")
}

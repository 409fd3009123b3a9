// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one digest: fetch, prompt, generate, render, send.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/biorxiv-digest/internal/catalog"
	"github.com/pdiddy/biorxiv-digest/internal/digest"
	"github.com/pdiddy/biorxiv-digest/internal/mailer"
	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/internal/prompt"
	"github.com/pdiddy/biorxiv-digest/internal/selection"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// Fetcher returns the papers in a catalog window.
type Fetcher interface {
	Fetch(ctx context.Context, q catalog.Query) ([]types.Paper, error)
}

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TopicPicker chooses the general concept of the day.
type TopicPicker interface {
	Pick() string
}

// Runner wires the stages together. Fields are set by the caller; Now
// defaults to time.Now.
type Runner struct {
	Fetcher   Fetcher
	Generator Generator
	Sender    mailer.Sender
	Topics    TopicPicker
	Now       func() time.Time
	Logger    zerolog.Logger
	Metrics   *observability.Metrics

	// Preview, when set, receives the rendered HTML and nothing is sent.
	Preview io.Writer
}

// Report summarizes a finished run.
type Report struct {
	From, To string
	Papers   int
	Offered  int
	Selected int
	Topic    string
	Subject  string

	// Skipped is true when the window held no papers.
	Skipped bool

	// Sent is true when the digest was handed to the relay.
	Sent bool
}

// Outcome classifies the report for metrics.
func (r Report) Outcome() string {
	switch {
	case r.Skipped:
		return observability.OutcomeSkipped
	case r.Sent:
		return observability.OutcomeSent
	default:
		return observability.OutcomePreview
	}
}

// Run executes one digest pass. An empty window ends the run successfully
// with Report.Skipped set. Every other failure aborts the run.
func (r *Runner) Run(ctx context.Context, cfg *types.DigestConfig) (rep Report, err error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	started := now()

	defer func() {
		outcome := rep.Outcome()
		if err != nil {
			outcome = observability.OutcomeFailed
		}
		r.Metrics.RecordRun(outcome, started, now())
	}()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Report{}, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}
	local := started.In(loc)

	q := catalog.Query{Server: cfg.Catalog.Server, Category: cfg.Catalog.Category}
	q.From, q.To = catalog.Window(local, cfg.Catalog.LookbackDays)
	rep.From, rep.To = q.From, q.To

	papers, err := r.Fetcher.Fetch(ctx, q)
	if err != nil {
		return rep, fmt.Errorf("loading recent papers: %w", err)
	}
	rep.Papers = len(papers)
	if len(papers) == 0 {
		r.Logger.Info().Str("from", q.From).Str("to", q.To).Msg("no papers found for interval")
		rep.Skipped = true
		return rep, nil
	}

	offered := prompt.Subset(papers, cfg.AI.MaxPapers)
	rep.Offered = len(offered)
	if r.Metrics != nil {
		r.Metrics.PromptPapers.Set(float64(len(offered)))
	}

	rep.Topic = r.Topics.Pick()
	text, err := prompt.Build(cfg.Interests, offered, rep.Topic)
	if err != nil {
		return rep, fmt.Errorf("building prompt: %w", err)
	}
	r.Logger.Info().
		Int("papers", len(papers)).
		Int("offered", len(offered)).
		Str("topic", rep.Topic).
		Msg("prompting model")

	reply, err := r.Generator.Generate(ctx, text)
	if err != nil {
		return rep, fmt.Errorf("generating digest: %w", err)
	}

	sel, err := selection.Parse(reply)
	if err != nil {
		return rep, fmt.Errorf("interpreting model reply: %w", err)
	}

	in := digest.Input{
		Now:       local,
		Zone:      cfg.Timezone,
		Topic:     rep.Topic,
		Papers:    offered,
		Selection: sel,
	}
	html, err := digest.Render(in)
	if err != nil {
		return rep, err
	}
	rep.Selected = digest.Count(in)
	rep.Subject = digest.Subject(local)
	if r.Metrics != nil {
		r.Metrics.Selected.Set(float64(rep.Selected))
	}

	if r.Preview != nil {
		if _, err := io.WriteString(r.Preview, html); err != nil {
			return rep, fmt.Errorf("writing preview: %w", err)
		}
		r.Logger.Info().Int("selected", rep.Selected).Msg("digest rendered (preview)")
		return rep, nil
	}

	msg := mailer.NewMessage(cfg.Email, rep.Subject, digest.PlainTextFallback, html)
	if err := r.Sender.Send(ctx, msg); err != nil {
		return rep, fmt.Errorf("sending digest: %w", err)
	}
	rep.Sent = true

	r.Logger.Info().
		Int("selected", rep.Selected).
		Int("recipients", len(msg.Recipients())).
		Str("subject", rep.Subject).
		Msg("digest sent")
	return rep, nil
}

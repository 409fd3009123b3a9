// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biorxiv-digest/internal/catalog"
	"github.com/pdiddy/biorxiv-digest/internal/config"
	"github.com/pdiddy/biorxiv-digest/internal/gemini"
	"github.com/pdiddy/biorxiv-digest/internal/mailer"
	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/internal/pipeline"
	"github.com/pdiddy/biorxiv-digest/internal/topics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and email today's digest",
	Long: `Run fetches the preprints posted in the lookback window, asks Gemini to select
and summarize the most relevant ones, renders the HTML digest, and sends it to
EMAIL_TO (plus EMAIL_CC and EMAIL_BCC). An empty window exits successfully
without sending.

With --dry-run the digest is written to --output (or stdout) instead of being
emailed, and SMTP settings are not required.`,
	RunE: runDigest,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "render the digest without sending it")
	runCmd.Flags().String("output", "", "file for the dry-run HTML (default: stdout)")
	runCmd.Flags().Uint64("seed", 0, "seed for the topic pick (0 picks randomly)")

	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	output, _ := cmd.Flags().GetString("output")
	seed, _ := cmd.Flags().GetUint64("seed")

	scope := config.ScopeSend
	if dryRun {
		scope = config.ScopePreview
	}
	cfg, logger, err := setup(cmd, scope)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	defer func() {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn().Err(err).Msg("metrics not written")
		}
	}()

	list, err := topics.Load(cfg.TopicsFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	gen, err := gemini.NewClient(ctx, cfg.AI, logger, metrics)
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Fetcher:   catalog.NewClient(cfg.Catalog, logger, metrics),
		Generator: gen,
		Sender:    &mailer.SMTPSender{Config: cfg.SMTP},
		Topics:    topics.NewPicker(list, seed),
		Logger:    logger,
		Metrics:   metrics,
	}

	if dryRun {
		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		runner.Preview = w
	}

	rep, err := runner.Run(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("digest failed")
		return err
	}

	switch {
	case rep.Skipped:
		fmt.Fprintf(cmd.ErrOrStderr(), "No papers found for %s to %s; nothing sent.\n", rep.From, rep.To)
	case rep.Sent:
		fmt.Fprintf(cmd.ErrOrStderr(), "Digest sent: %d of %d papers featured.\n", rep.Selected, rep.Offered)
	case output != "":
		fmt.Fprintf(cmd.ErrOrStderr(), "Digest written to %s\n", output)
	}
	return nil
}

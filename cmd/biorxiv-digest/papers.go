// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biorxiv-digest/internal/catalog"
	"github.com/pdiddy/biorxiv-digest/internal/config"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List the preprints in the current lookback window",
	Long: `Papers fetches the catalog window a digest run would use and prints the
deduplicated papers, newest first, with the IDs the model would see. No model
call is made and no email is sent.`,
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().Bool("json", false, "output papers as JSON")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, logger, err := setup(cmd, config.ScopeCatalog)
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}

	q := catalog.Query{Server: cfg.Catalog.Server, Category: cfg.Catalog.Category}
	q.From, q.To = catalog.Window(time.Now().In(loc), cfg.Catalog.LookbackDays)

	papers, err := catalog.NewClient(cfg.Catalog, logger, nil).Fetch(cmd.Context(), q)
	if err != nil {
		return err
	}

	if asJSON {
		return catalog.FormatJSON(papers, cmd.OutOrStdout())
	}
	catalog.FormatTable(papers, cmd.OutOrStdout())
	return nil
}

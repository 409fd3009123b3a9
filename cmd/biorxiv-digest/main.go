// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the biorxiv-digest CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/biorxiv-digest/internal/config"
	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/internal/secrets"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Set

// rootCmd is the base command for the biorxiv-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "biorxiv-digest",
	Short: "Email a daily AI-curated digest of new bioRxiv preprints",
	Long: `biorxiv-digest pulls recent preprints from the bioRxiv (or medRxiv) details
API, asks Gemini to pick and summarize the five most relevant to your interests,
and emails the result as an HTML digest.

It is meant to be run once per day by an external scheduler (cron, a CI
workflow). Settings come from environment variables, an optional YAML config
file, and credential files in the secrets directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./biorxiv-digest.yaml or ~/.config/biorxiv-digest/biorxiv-digest.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of credential files (gemini-api-key, smtp-password, smtp-user)")
}

// setup loads configuration for scope and builds the run logger.
func setup(cmd *cobra.Command, scope config.Scope) (*types.DigestConfig, zerolog.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(config.Options{
		File:    cfgFile,
		Secrets: loadedSecrets.ConfigDefaults(),
		Scope:   scope,
	})
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	logger := observability.NewLogger(cfg.Logging, os.Stderr)
	logger = observability.WithRunContext(logger, observability.NewRunID(), cfg.Catalog.Server)
	if keys := loadedSecrets.Keys(); len(keys) > 0 {
		logger.Debug().Strs("keys", keys).Msg("loaded secrets")
	}
	for _, name := range loadedSecrets.Unreadable {
		logger.Warn().Str("file", name).Msg("could not read secret")
	}
	return cfg, logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

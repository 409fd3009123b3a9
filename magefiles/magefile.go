//go:build mage

// Package main contains Mage build targets for biorxiv-digest developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/biorxiv-digest/internal/topics"
)

const (
	binDir      = "bin"
	binName     = "biorxiv-digest"
	cmdPkg      = "./cmd/biorxiv-digest"
	previewFile = "digest-preview.html"
	topicsFile  = "topics.yaml"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Preview renders today's digest into digest-preview.html without sending it.
// Requires GEMINI_API_KEY and DIGEST_INTERESTS.
func Preview() error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "run", "--dry-run", "--output", previewFile); err != nil {
		return err
	}
	fmt.Printf("Open %s in a browser to review the digest.\n", previewFile)
	return nil
}

// Topics validates topics.yaml and prints how many concepts it holds.
func Topics() error {
	list, err := topics.Load(topicsFile)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d topics\n", topicsFile, len(list))
	return nil
}

// Clean removes build output and the preview file.
func Clean() error {
	if err := sh.Rm(binDir); err != nil {
		return err
	}
	return sh.Rm(previewFile)
}

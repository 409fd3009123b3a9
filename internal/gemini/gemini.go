// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini calls the Gemini generateContent API with a single
// fallback model.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// Generation parameters sent with every call.
const (
	Temperature     float32 = 0.2
	MaxOutputTokens int32   = 16384
)

// ErrNoCandidates is returned when a successful response carries no
// candidate content.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates text from a prompt.
type Client struct {
	models        contentGenerator
	Model         string
	FallbackModel string
	Timeout       time.Duration
	Logger        zerolog.Logger
	Metrics       *observability.Metrics
}

// NewClient creates a Gemini API client from cfg.
func NewClient(ctx context.Context, cfg types.AIConfig, logger zerolog.Logger, metrics *observability.Metrics) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Client{
		models:        gc.Models,
		Model:         cfg.Model,
		FallbackModel: cfg.FallbackModel,
		Timeout:       cfg.Timeout,
		Logger:        logger,
		Metrics:       metrics,
	}, nil
}

// Generate sends prompt to the primary model. If that call fails for any
// reason the identical request is sent once to the fallback model, whose
// failure is returned. The reply text is the concatenation of the first
// candidate's text parts, trimmed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.call(ctx, c.Model, prompt)
	if err != nil {
		c.Logger.Warn().Err(err).
			Str("model", c.Model).
			Str("fallback", c.FallbackModel).
			Msg("primary model failed, using fallback")

		resp, err = c.call(ctx, c.FallbackModel, prompt)
		if err != nil {
			return "", fmt.Errorf("calling fallback model %s: %w", c.FallbackModel, err)
		}
	}
	return responseText(resp)
}

// call issues one generateContent request bounded by c.Timeout.
func (c *Client) call(ctx context.Context, model, prompt string) (*genai.GenerateContentResponse, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(Temperature),
		MaxOutputTokens: MaxOutputTokens,
	})
	c.Metrics.RecordModelCall(model, err)
	if err != nil {
		return nil, err
	}

	c.Logger.Debug().
		Str("model", model).
		Dur("elapsed", time.Since(start)).
		Msg("model responded")
	return resp, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outbound API calls.
type HTTPConfig struct {
	// Timeout is the per-request ceiling.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with catalog requests.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for the bioRxiv/medRxiv details API.
type CatalogConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// BaseURL is the details endpoint root (default https://api.biorxiv.org/details).
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`

	// Server selects the catalog: "biorxiv" or "medrxiv".
	Server string `mapstructure:"server" yaml:"server" validate:"required"`

	// Category optionally restricts results to one subject category.
	Category string `mapstructure:"category" yaml:"category"`

	// LookbackDays is how many calendar days before today the window starts.
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days" validate:"gte=0"`

	// RateLimit is the client-side request pacing in requests per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gt=0"`
}

// AIConfig holds settings for the Gemini generateContent call.
type AIConfig struct {
	// APIKey authenticates against the Gemini API.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty" validate:"required"`

	// Model is the primary model (default gemini-2.5-flash).
	Model string `mapstructure:"model" yaml:"model" validate:"required"`

	// FallbackModel is tried once when the primary call fails.
	FallbackModel string `mapstructure:"fallback_model" yaml:"fallback_model" validate:"required"`

	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// MaxPapers caps how many papers are sent in the prompt. Values below
	// the prompt floor of 10 are raised to it.
	MaxPapers int `mapstructure:"max_papers" yaml:"max_papers" validate:"gt=0"`

	// Timeout is the per-call ceiling (default 60s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// SMTPConfig holds relay credentials.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host" validate:"required"`
	Port     int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	User     string `mapstructure:"user" yaml:"user" validate:"required"`
	Password string `mapstructure:"password" yaml:"password,omitempty" validate:"required"`

	// Timeout bounds the whole dial-and-send exchange (default 60s).
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EmailConfig holds the raw, delimiter-separated address lists.
type EmailConfig struct {
	To   string `mapstructure:"to" yaml:"to" validate:"required"`
	Cc   string `mapstructure:"cc" yaml:"cc"`
	Bcc  string `mapstructure:"bcc" yaml:"bcc"`
	From string `mapstructure:"from" yaml:"from"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`

	// Format is "json" or "console".
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console pretty"`
}

// DigestConfig groups every setting for one digest run.
type DigestConfig struct {
	// Interests is the free-text description of what the reader cares about.
	Interests string `mapstructure:"interests" yaml:"interests" validate:"required"`

	// TopicsFile is the path of the general-topic list.
	TopicsFile string `mapstructure:"topics_file" yaml:"topics_file" validate:"required"`

	// Timezone names the zone that defines "today" (default America/Toronto).
	Timezone string `mapstructure:"timezone" yaml:"timezone" validate:"required"`

	// MetricsFile, when set, receives a Prometheus textfile at the end of a run.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	SMTP    SMTPConfig    `mapstructure:"smtp" yaml:"smtp"`
	Email   EmailConfig   `mapstructure:"email" yaml:"email"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

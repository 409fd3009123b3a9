// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the digest configuration from the environment, an
// optional YAML file, and secret files, and validates it before any network
// activity happens.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/biorxiv-digest/internal/mailer"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// ErrInvalidConfig is returned for any missing or malformed setting.
var ErrInvalidConfig = errors.New("invalid configuration")

// envNames maps configuration keys to the environment variables that set them.
var envNames = map[string]string{
	"interests":             "DIGEST_INTERESTS",
	"topics_file":           "DIGEST_TOPICS_FILE",
	"timezone":              "DIGEST_TIMEZONE",
	"metrics_file":          "DIGEST_METRICS_FILE",
	"catalog.base_url":      "BIORXIV_API_BASE",
	"catalog.server":        "BIORXIV_SERVER",
	"catalog.category":      "BIORXIV_CATEGORY",
	"catalog.lookback_days": "LOOKBACK_DAYS",
	"catalog.rate_limit":    "BIORXIV_RATE_LIMIT",
	"ai.api_key":            "GEMINI_API_KEY",
	"ai.model":              "GEMINI_MODEL",
	"ai.fallback_model":     "GEMINI_FALLBACK_MODEL",
	"ai.base_url":           "GEMINI_BASE_URL",
	"ai.max_papers":         "MAX_PAPERS_FOR_AI",
	"smtp.host":             "SMTP_HOST",
	"smtp.port":             "SMTP_PORT",
	"smtp.user":             "SMTP_USER",
	"smtp.password":         "SMTP_PASSWORD",
	"email.to":              "EMAIL_TO",
	"email.cc":              "EMAIL_CC",
	"email.bcc":             "EMAIL_BCC",
	"email.from":            "EMAIL_FROM",
	"logging.level":         "DIGEST_LOG_LEVEL",
	"logging.format":        "DIGEST_LOG_FORMAT",
}

// Scope selects which settings must be valid.
type Scope int

const (
	// ScopeSend requires everything needed to generate and email a digest.
	ScopeSend Scope = iota

	// ScopePreview skips SMTP and recipient settings.
	ScopePreview

	// ScopeCatalog only requires catalog, timezone, and logging settings.
	ScopeCatalog
)

// covers reports whether a setting belongs to the scope.
func (s Scope) covers(key string) bool {
	switch s {
	case ScopePreview:
		return !strings.HasPrefix(key, "smtp.") && !strings.HasPrefix(key, "email.")
	case ScopeCatalog:
		return strings.HasPrefix(key, "catalog.") || strings.HasPrefix(key, "logging.") || key == "timezone"
	default:
		return true
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, biorxiv-digest.yaml is
	// looked up in the working directory and ~/.config/biorxiv-digest.
	File string

	// Secrets supplies values for keys whose environment variable is unset,
	// keyed by configuration key (see secrets.Set.ConfigDefaults).
	Secrets map[string]string

	// Scope limits validation to the settings a command needs.
	Scope Scope
}

// Load builds and validates a DigestConfig.
func Load(opts Options) (*types.DigestConfig, error) {
	v := viper.New()
	setDefaults(v)

	for key, value := range opts.Secrets {
		v.SetDefault(key, value)
	}
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("biorxiv-digest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "biorxiv-digest"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %v", ErrInvalidConfig, err)
		}
	}

	var cfg types.DigestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	normalize(&cfg)

	if err := Validate(&cfg, opts.Scope); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("topics_file", "topics.yaml")
	v.SetDefault("timezone", "America/Toronto")

	v.SetDefault("catalog.base_url", "https://api.biorxiv.org/details")
	v.SetDefault("catalog.server", "biorxiv")
	v.SetDefault("catalog.lookback_days", 1)
	v.SetDefault("catalog.rate_limit", 5.0)
	v.SetDefault("catalog.timeout", 30*time.Second)
	v.SetDefault("catalog.user_agent", "biorxiv-digest/0.1")

	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.fallback_model", "gemini-2.5-flash-lite")
	v.SetDefault("ai.max_papers", 60)
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.timeout", 60*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// normalize trims free-text settings and applies derived defaults.
func normalize(cfg *types.DigestConfig) {
	cfg.Interests = strings.TrimSpace(cfg.Interests)
	cfg.Catalog.Server = strings.TrimSpace(cfg.Catalog.Server)
	cfg.Catalog.Category = strings.TrimSpace(cfg.Catalog.Category)
	cfg.Email.From = strings.TrimSpace(cfg.Email.From)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	if cfg.Email.From == "" {
		cfg.Email.From = cfg.SMTP.User
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		return name
	})
	return val
}

// problem is one failed check keyed by configuration key.
type problem struct {
	key string
	msg string
}

// Validate checks struct constraints, the timezone, and that EMAIL_TO names
// at least one address, limited to the settings in scope. Problems are
// reported by environment variable name.
func Validate(cfg *types.DigestConfig, scope Scope) error {
	var problems []problem

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			problems = append(problems, problem{"timezone", fmt.Sprintf("DIGEST_TIMEZONE: unknown zone %q", cfg.Timezone)})
		}
	}

	if strings.TrimSpace(cfg.Email.To) != "" && len(mailer.ParseRecipients(cfg.Email.To)) == 0 {
		problems = append(problems, problem{"email.to", "EMAIL_TO: no addresses"})
	}

	var msgs []string
	for _, p := range problems {
		if scope.covers(p.key) {
			msgs = append(msgs, p.msg)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// describe renders one validation failure using the environment name.
func describe(fe validator.FieldError) problem {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}
	name := key
	if env, ok := envNames[key]; ok {
		name = env
	}
	if fe.Tag() == "required" {
		return problem{key, name + " is required"}
	}
	return problem{key, fmt.Sprintf("%s: failed %q check (value %v)", name, fe.Tag(), fe.Value())}
}

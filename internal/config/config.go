// Package config reads and validates the server configuration from the
// process environment.
//
// Every value is required (except PORT and STATIC_ROOT, which have
// defaults). Validation is strict and runs before anything else is
// constructed: a missing or malformed value means the process does not
// start. There is no partial or degraded startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the process-wide configuration. It is constructed once in main,
// validated, and from then on treated as read-only.
type Config struct {
	API        APIConfig
	MongoURI   string `validate:"required,mongodb_connection_string"`
	SigningKey string `validate:"required"`
	OIDC       OIDCConfig
	ViewsRoot  string `validate:"required"`

	// StaticRoot and Port have defaults and are the only optional values.
	StaticRoot string
	Port       int
}

// APIConfig locates the internal JSON API. The login flow looks up
// existing users through this base URI rather than hitting storage
// directly.
type APIConfig struct {
	BaseURI string `validate:"required,url"`
}

// OIDCConfig holds the identity-provider client settings.
type OIDCConfig struct {
	Audience     string `validate:"required,url"`
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	Issuer       string `validate:"required,url"`
	RedirectURI  string `validate:"required,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// envNames maps validator namespaces back to the environment variable the
// offending value came from, so startup errors point at the right knob.
var envNames = map[string]string{
	"Config.API.BaseURI":       "API_BASE_URI",
	"Config.MongoURI":          "MONGODB_URI",
	"Config.SigningKey":        "SIGNING_KEY",
	"Config.OIDC.Audience":     "OIDC_AUD",
	"Config.OIDC.ClientID":     "OIDC_CLIENT_ID",
	"Config.OIDC.ClientSecret": "OIDC_CLIENT_SECRET",
	"Config.OIDC.Issuer":       "OIDC_ISS",
	"Config.OIDC.RedirectURI":  "OIDC_REDIRECT_URI",
	"Config.ViewsRoot":         "VIEWS_ROOT",
}

// Load builds a Config from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURI: os.Getenv("API_BASE_URI"),
		},
		MongoURI:   os.Getenv("MONGODB_URI"),
		SigningKey: os.Getenv("SIGNING_KEY"),
		OIDC: OIDCConfig{
			Audience:     os.Getenv("OIDC_AUD"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			Issuer:       os.Getenv("OIDC_ISS"),
			RedirectURI:  os.Getenv("OIDC_REDIRECT_URI"),
		},
		ViewsRoot:  os.Getenv("VIEWS_ROOT"),
		StaticRoot: "static",
		Port:       8000,
	}

	if v := os.Getenv("STATIC_ROOT"); v != "" {
		cfg.StaticRoot = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: PORT must be a number (got %q)", v)
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config against its schema. The returned error names
// every invalid environment variable, not just the first one.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.Namespace()]
		if name == "" {
			name = fe.Namespace()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a well-formed URL", name))
		case "mongodb_connection_string":
			msgs = append(msgs, fmt.Sprintf("%s must be a mongodb:// or mongodb+srv:// connection string", name))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", name, fe.Tag()))
		}
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

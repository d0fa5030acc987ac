// Package config loads optional connector configuration from a YAML
// file. Everything has a sensible zero-value default (the real LinkedIn
// endpoints), so most installations run without a config file at all.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"connectkit/internal/oauth"
)

// Duration wraps time.Duration with YAML string parsing ("5m", "30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// EndpointsConfig overrides the provider endpoint URLs.
type EndpointsConfig struct {
	Authorization string `yaml:"authorization,omitempty"`
	Token         string `yaml:"token,omitempty"`
	Userinfo      string `yaml:"userinfo,omitempty"`
}

// Config is the connector configuration.
type Config struct {
	// Endpoints overrides the provider endpoints. Empty values keep the
	// LinkedIn defaults.
	Endpoints EndpointsConfig `yaml:"endpoints,omitempty"`

	// Scopes are the default requested scopes when --scopes is not given.
	Scopes []string `yaml:"scopes,omitempty"`

	// CallbackPort is the local callback listener port.
	CallbackPort int `yaml:"callbackPort,omitempty"`

	// CallbackTimeout bounds the wait for the authorization callback.
	CallbackTimeout Duration `yaml:"callbackTimeout,omitempty"`

	// ReplicateBaseURL overrides the Replicate API base URL.
	ReplicateBaseURL string `yaml:"replicateBaseURL,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Scopes:          oauth.DefaultScopes,
		CallbackPort:    oauth.DefaultCallbackPort,
		CallbackTimeout: Duration(oauth.DefaultCallbackTimeout),
	}
}

// Load reads the configuration file at path and merges it over the
// defaults. A missing file (or empty path) yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file found, using defaults", "path", path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	if cfg.CallbackPort == 0 {
		cfg.CallbackPort = oauth.DefaultCallbackPort
	}
	if cfg.CallbackTimeout == 0 {
		cfg.CallbackTimeout = Duration(oauth.DefaultCallbackTimeout)
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = oauth.DefaultScopes
	}

	slog.Debug("loaded configuration", "path", path)
	return cfg, nil
}

// OAuthEndpoints converts the endpoint overrides to the oauth package
// type, falling back to the LinkedIn defaults for empty values.
func (c Config) OAuthEndpoints() oauth.Endpoints {
	endpoints := oauth.DefaultEndpoints()
	if c.Endpoints.Authorization != "" {
		endpoints.Authorization = c.Endpoints.Authorization
	}
	if c.Endpoints.Token != "" {
		endpoints.Token = c.Endpoints.Token
	}
	if c.Endpoints.Userinfo != "" {
		endpoints.Userinfo = c.Endpoints.Userinfo
	}
	return endpoints
}

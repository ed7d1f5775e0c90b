/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *Config {
	return &Config{
		bind:              "127.0.0.1",
		logFormat:         "json",
		port:              8080,
		sessionTimeout:    time.Hour,
		engine:            "noop",
		maxTokens:         1024,
		temperature:       0.7,
		engineConcurrency: 4,
		tokenEstimator:    "chars",
		charsPerToken:     4,
		log:               zerolog.Nop(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 70000 }, true},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"cert and key", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"unknown engine", func(c *Config) { c.engine = "hal9000" }, true},
		{"engine case", func(c *Config) { c.engine = "Gemini" }, false},
		{"unknown estimator", func(c *Config) { c.tokenEstimator = "guess" }, true},
		{"tiktoken estimator", func(c *Config) { c.tokenEstimator = "tiktoken" }, false},
		{"unknown log format", func(c *Config) { c.logFormat = "xml" }, true},
		{"zero chars per token", func(c *Config) { c.charsPerToken = 0 }, true},
		{"negative timeout", func(c *Config) { c.engineTimeout = -time.Second }, true},
		{"negative concurrency", func(c *Config) { c.engineConcurrency = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := newTestConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	_ = newCmd(cfg)

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, "anthropic", cfg.engine)
	assert.Equal(t, 1024, cfg.maxTokens)
	assert.Equal(t, 0.7, cfg.temperature)
	assert.Equal(t, 60*time.Minute, cfg.sessionTimeout)
	assert.Equal(t, "chars", cfg.tokenEstimator)
	assert.Equal(t, 4, cfg.charsPerToken)
	assert.Equal(t, "json", cfg.logFormat)
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("TWENTYQ_PORT", "9090")
	t.Setenv("TWENTYQ_ENGINE", "gemini")
	t.Setenv("TWENTYQ_SESSION_TIMEOUT", "5m")
	t.Setenv("TWENTYQ_VERBOSE", "true")

	cfg := &Config{}
	_ = newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, "gemini", cfg.engine)
	assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)
	assert.True(t, cfg.verbose)
}

func TestNewCmdReadsLegacyKeyVariables(t *testing.T) {
	t.Setenv("AKEY", "from-akey")

	cfg := &Config{}
	_ = newCmd(cfg)
	assert.Equal(t, "from-akey", cfg.apiKey)

	t.Setenv("TWENTYQ_API_KEY", "from-prefix")

	cfg = &Config{}
	_ = newCmd(cfg)
	assert.Equal(t, "from-prefix", cfg.apiKey)
}

func TestNewCmdFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TWENTYQ_PORT", "9090")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "7070"}))
	assert.Equal(t, 7070, cfg.port)
}

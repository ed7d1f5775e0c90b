/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/twentyq/engine"
)

type Config struct {
	bind           string
	logFormat      string
	metrics        bool
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	engine            string
	apiKey            string
	model             string
	baseURL           string
	maxTokens         int
	temperature       float64
	engineConcurrency int
	engineTimeout     time.Duration

	invitations    string
	tokenEstimator string
	charsPerToken  int

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if !slices.Contains(engine.Providers, strings.ToLower(c.engine)) {
		return fmt.Errorf("invalid engine (must be one of %s): %q", strings.Join(engine.Providers, ", "), c.engine)
	}
	if c.tokenEstimator != "chars" && c.tokenEstimator != "tiktoken" {
		return fmt.Errorf("invalid token estimator (must be chars or tiktoken): %q", c.tokenEstimator)
	}
	if c.logFormat != "json" && c.logFormat != "console" {
		return fmt.Errorf("invalid log format (must be json or console): %q", c.logFormat)
	}
	if c.charsPerToken < 1 {
		return fmt.Errorf("invalid chars per token (must be at least 1): %d", c.charsPerToken)
	}
	if c.maxTokens < 0 || c.engineConcurrency < 0 || c.engineTimeout < 0 || c.sessionTimeout < 0 {
		return errors.New("--max-tokens, --engine-concurrency, --engine-timeout and --session-timeout must not be negative")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TWENTYQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "twentyq",
		Short:         "A 20 Questions guessing game for kids, played against a language model.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.apiKey, "api-key", "", "credential for the conversation engine (env: TWENTYQ_API_KEY, AKEY, ANTHROPIC_API_KEY)")
	fs.StringVar(&cfg.baseURL, "base-url", "", "override the engine API base url (env: TWENTYQ_BASE_URL)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TWENTYQ_BIND)")
	fs.IntVar(&cfg.charsPerToken, "chars-per-token", 4, "average characters per token when estimating usage (env: TWENTYQ_CHARS_PER_TOKEN)")
	fs.StringVar(&cfg.engine, "engine", engine.Anthropic, "conversation engine: anthropic, openai, gemini, ark or noop (env: TWENTYQ_ENGINE)")
	fs.IntVar(&cfg.engineConcurrency, "engine-concurrency", 16, "maximum concurrent engine calls, 0 for unlimited (env: TWENTYQ_ENGINE_CONCURRENCY)")
	fs.DurationVar(&cfg.engineTimeout, "engine-timeout", 0, "deadline for a single engine call, 0 for none (env: TWENTYQ_ENGINE_TIMEOUT)")
	fs.StringVar(&cfg.invitations, "invitations", "", "yaml file of invitation codes; enables the invitation gate (env: TWENTYQ_INVITATIONS)")
	fs.StringVar(&cfg.logFormat, "log-format", "json", "log output format: json or console (env: TWENTYQ_LOG_FORMAT)")
	fs.IntVar(&cfg.maxTokens, "max-tokens", 1024, "maximum tokens per engine reply (env: TWENTYQ_MAX_TOKENS)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics at /metrics (env: TWENTYQ_METRICS)")
	fs.StringVar(&cfg.model, "model", "", "model identifier, blank for the engine default (env: TWENTYQ_MODEL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TWENTYQ_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: TWENTYQ_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: TWENTYQ_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle player sessions are ended (env: TWENTYQ_SESSION_TIMEOUT)")
	fs.Float64Var(&cfg.temperature, "temperature", 0.7, "sampling temperature for the engine (env: TWENTYQ_TEMPERATURE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: TWENTYQ_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: TWENTYQ_TLS_KEY)")
	fs.StringVar(&cfg.tokenEstimator, "token-estimator", "chars", "usage estimate when the engine reports none: chars or tiktoken (env: TWENTYQ_TOKEN_ESTIMATOR)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TWENTYQ_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: TWENTYQ_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name == "api-key" {
			_ = v.BindEnv(f.Name, "TWENTYQ_API_KEY", "AKEY", "ANTHROPIC_API_KEY")
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("twentyq v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

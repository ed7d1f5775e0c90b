/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Seednode/twentyq/engine"
	"github.com/Seednode/twentyq/game"
	"github.com/Seednode/twentyq/invite"
	"github.com/Seednode/twentyq/metrics"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("twentyq v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanize.Bytes(uint64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// newEstimator picks the usage estimator used when an engine reports no counts.
func newEstimator(cfg *Config) game.Estimator {
	chars := game.CharEstimator{Divisor: cfg.charsPerToken}

	if cfg.tokenEstimator != "tiktoken" {
		return chars
	}

	est, err := game.NewTiktokenEstimator("cl100k_base")
	if err != nil {
		cfg.log.Warn().Err(err).Msg("falling back to character-based token estimates")
		return chars
	}

	return est
}

// newGate returns nil when no invitations file is configured.
func newGate(cfg *Config) game.Gate {
	if cfg.invitations == "" {
		return nil
	}

	codes, err := invite.Load(cfg.invitations)
	if err != nil {
		cfg.log.Warn().Err(err).Str("default_code", invite.DefaultCode).Msg("using default invitation code")
	} else {
		logf(cfg, "START: Loaded %d invitation codes from %s", codes.Len(), cfg.invitations)
	}

	return codes
}

// newStore wires the engine, gate and estimator into a session store. A
// missing credential is logged for the operator and leaves the engine
// unset, so players see a configuration message instead of a game.
func newStore(ctx context.Context, cfg *Config) *game.Store {
	opts := game.Options{
		Gate:      newGate(cfg),
		Estimator: newEstimator(cfg),
		Logger:    cfg.log,
	}

	eng, err := engine.New(ctx, engine.Config{
		Provider:     cfg.engine,
		APIKey:       cfg.apiKey,
		Model:        cfg.model,
		BaseURL:      cfg.baseURL,
		SystemPrompt: game.SystemPrompt,
		MaxTokens:    cfg.maxTokens,
		Temperature:  cfg.temperature,
		Concurrency:  cfg.engineConcurrency,
	})
	if err != nil {
		cfg.log.Error().Err(err).Str("engine", cfg.engine).Msg("conversation engine unavailable")
	} else {
		opts.Engine = eng
		logf(cfg, "START: Using %s engine", cfg.engine)
	}

	return game.NewStore(opts, cfg.sessionTimeout)
}

func newRouter(cfg *Config, store *game.Store, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		cfg.log.Error().Interface("panic", i).Str("path", r.URL.Path).Msg("recovered from panic")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/favicons/*favicon", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	if cfg.metrics {
		metrics.MustRegister(nil)
		mux.Handler("GET", cfg.prefix+"/metrics", promhttp.Handler())
	}

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	registerTwentyGame(cfg, store, mux, errs)

	return mux
}

func ServePage(ctx context.Context, cfg *Config, args []string) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: twentyq v%s", releaseVersion)

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	errs := make(chan error, 64)
	go func() {
		for err := range errs {
			cfg.log.Error().Err(err).Msg("write failed")
		}
	}()

	store := newStore(ctx, cfg)
	defer store.Close()

	mux := newRouter(cfg, store, errs)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}

	go func() {
		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.log.Error().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return nil
}

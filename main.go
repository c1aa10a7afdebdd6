// Package main is the entry point for the throttle gate demo server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"learn.throttlegate/core"
	"learn.throttlegate/middleware"
)

// main parses flags, builds the configured gates, puts each routed gate in front
// of a handler, and serves them next to /stats and /metrics.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	port := flag.Int("p", 8080, "Port to run the HTTP server on")
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	logLevelStr := flag.String("log-level", "info", "Logging level (trace, debug, info, warn, error, fatal, panic)")
	demo := flag.Bool("demo", false, "Run the break timer example and exit")
	flag.Parse()

	logLevel, err := zerolog.ParseLevel(*logLevelStr)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", *logLevelStr).Msg("Invalid log level provided")
	}
	zerolog.SetGlobalLevel(logLevel)

	if *demo {
		runDemo()
		return
	}

	log.Info().Str("config_path", *configPath).Msg("Starting application initialization")
	app, cleanup, err := InitializeApplication(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config_path", *configPath).Msg("Application startup failed")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("address", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("address", srv.Addr).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("HTTP server stopped")
}

// routes mounts one throttled handler per routed gate plus /stats and /metrics.
func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	for _, entry := range app.Gates.Entries() {
		label := entry.Config.Label
		if err := app.Metrics.WatchGate(label, entry.Gate); err != nil {
			log.Warn().Err(err).Str("gate", label).Msg("Gate total_calls gauge not exported")
		}
		if entry.Config.Route == "" {
			continue
		}
		mw := middleware.NewThrottleMiddleware(entry.Gate, app.Metrics.ForGate(label), label)
		mux.HandleFunc(entry.Config.Route, mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "%s: run permitted\n", label)
		}))
		log.Info().Str("gate", label).Str("route", entry.Config.Route).Dur("interval", entry.Config.Interval).Msg("Route throttled")
	}

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if err := app.Gates.Report(r.Context(), w); err != nil {
			log.Warn().Err(err).Msg("Stats report incomplete")
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))
	return mux
}

// runDemo lets a ten second break timer run once, throttles the next hundred attempts
// and prints its stats.
func runDemo() {
	breakTimer := core.NewGate(10*time.Second, "Break")

	if !breakTimer.TryRun() {
		log.Fatal().Msg("Demo: a fresh gate must permit its first run")
	}
	for i := 0; i < 100; i++ {
		if breakTimer.TryRun() {
			log.Fatal().Int("attempt", i+1).Msg("Demo: run permitted before ten seconds passed")
		}
	}
	breakTimer.PrintStats()
	log.Info().Uint64("total_calls", breakTimer.TotalCalls()).Msg("Demo: finished")
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tuannm99/novavolt/internal"
	"github.com/tuannm99/novavolt/internal/logging"
	"github.com/tuannm99/novavolt/internal/metrics"
	"github.com/tuannm99/novavolt/server/voltwire"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "config file (yaml, toml or json)")
		addr        = flag.String("addr", "", "listen address (overrides config)")
		metricsAddr = flag.String("metrics-addr", "", "serve /metrics on this address (overrides config)")
	)
	flag.Parse()

	cfg, err := internal.LoadConfig(*cfgPath)
	if err != nil {
		l := logging.New("novavolt-server", "info", true)
		l.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	logger := logging.Init(cfg.AppName+"-server", cfg.Log.Level, cfg.Log.Console)
	reg, err := newMetricsRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("register metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := voltwire.NewServer(voltwire.ServerConfigFrom(cfg, &logger))
	if err := registerHelloWorld(srv, newGreetings()); err != nil {
		logger.Fatal().Err(err).Msg("register procedures")
	}

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(ctx, logger, cfg.Server.MetricsAddr, reg)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		_ = srv.Close()
		os.Exit(1)
	}
	_ = srv.Close()
	logger.Info().Msg("shut down")
}

// newMetricsRegistry holds the invocation collectors plus the Go runtime and
// process collectors.
func newMetricsRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func serveMetrics(ctx context.Context, logger zerolog.Logger, addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server")
	}
}

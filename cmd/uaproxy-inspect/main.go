// Command uaproxy-inspect serves an in-memory address space over HTTP through
// the proxy layer. It is meant for exploring fixtures and descriptor tables:
//
//	uaproxy-inspect -config config.toml
//	curl localhost:8480/nodes/i=2253/properties/ServiceLevel?type=ServerType
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	uaproxy "github.com/smnsjas/go-uaproxy"
	"github.com/smnsjas/go-uaproxy/catalog"
	"github.com/smnsjas/go-uaproxy/config"
	"github.com/smnsjas/go-uaproxy/metrics"
	"github.com/smnsjas/go-uaproxy/session/memsession"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML configuration")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "uaproxy-inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	logger := initLogger("uaproxy-inspect", cfg.Log, os.Stdout)

	client, reg, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	srv := NewServer(client, reg, logger, cfg.Client.Timeout)
	srv.Start(cfg.HTTP.Addr)

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	return srv.Stop(cfg.HTTP.ShutdownTimeout)
}

// buildClient assembles the address space, the catalog and the metrics
// registry described by cfg.
func buildClient(cfg config.Config, logger zerolog.Logger) (*uaproxy.Client, *prometheus.Registry, error) {
	sess := memsession.Standard()
	if cfg.Fixture.Path != "" {
		if err := sess.LoadFixtureFile(cfg.Fixture.Path); err != nil {
			return nil, nil, fmt.Errorf("load fixture: %w", err)
		}
		logger.Info().Str("path", cfg.Fixture.Path).Strs("namespaces", sess.Namespaces()).Msg("fixture loaded")
	}

	cat := catalog.Standard()
	for _, path := range cfg.Catalog.Paths {
		if err := cat.LoadFile(path); err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		logger.Info().Str("path", path).Msg("catalog tables loaded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New()
	if err := collector.Register(reg); err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []uaproxy.Option{
		uaproxy.WithCatalog(cat),
		uaproxy.WithMetrics(collector),
	}
	if logger.GetLevel() <= zerolog.DebugLevel {
		proxyLog := logger.With().Str("component", "proxy").Logger()
		opts = append(opts, uaproxy.WithLogger(&proxyLog))
	}
	return uaproxy.NewClient(sess, opts...), reg, nil
}

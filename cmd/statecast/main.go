package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statecast/statecast/internal/api"
	"github.com/statecast/statecast/internal/bus"
	"github.com/statecast/statecast/internal/config"
	"github.com/statecast/statecast/internal/poller"
	"github.com/statecast/statecast/internal/state"
	"github.com/statecast/statecast/internal/topic"
	"github.com/statecast/statecast/internal/webhook"
	"github.com/statecast/statecast/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("statecast starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	specs := make([]topic.Spec, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		specs = append(specs, topic.Spec{Name: t.Name, Emit: t.Emit, Fields: t.Fields})
	}
	registry, err := topic.NewRegistry(specs)
	if err != nil {
		slog.Error("invalid topic registry", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"upstream", cfg.Poll.URL,
		"interval", time.Duration(cfg.Poll.Interval),
		"listen", cfg.Listen.Addr,
		"tls", cfg.Listen.TLSEnabled(),
		"topics", registry.Len(),
		"webhooks", len(cfg.Webhooks),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := state.New()
	b := bus.New()

	// Webhook targets subscribe before the first poll so no event is missed.
	webhook.New(cfg.Webhooks).Bind(b, registry)

	// WebSocket hub — pushes the snapshot on connect, then per-topic events.
	hub := ws.New(st, registry, b)
	go hub.Run(ctx)

	// Poller — drives the fetch→diff→publish cycle.
	go poller.New(cfg.Poll, registry, b, st).Run(ctx)

	// Watch config file for changes. The registry is static for the process
	// lifetime: topic changes take effect on restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Warn("config changed on disk — restart to apply",
				"topics", len(updated.Topics))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(st, registry, hub))
	httpMux.Handle("/ws", hub)
	httpMux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    cfg.Listen.Addr,
		Handler: httpMux,
	}
	go func() {
		var err error
		if cfg.Listen.TLSEnabled() {
			slog.Info("HTTPS server listening", "addr", cfg.Listen.Addr)
			err = httpSrv.ListenAndServeTLS(cfg.Listen.CertFile, cfg.Listen.KeyFile)
		} else {
			slog.Info("HTTP server listening", "addr", cfg.Listen.Addr)
			err = httpSrv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("statecast shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

// streamprobe connects to a streaming server with the resilient client and
// prints every state transition, message, and error to the console. Useful
// for exercising reconnection behavior against a real endpoint.
//
// Usage: go run ./cmd/streamprobe --config configs/streamprobe.example.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradedeck/streamcore/internal/config"
	"github.com/tradedeck/streamcore/internal/connection"
	"github.com/tradedeck/streamcore/internal/metrics"
	"github.com/tradedeck/streamcore/internal/model"
	"github.com/tradedeck/streamcore/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamprobe.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamprobe",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := append(cfg.Options(), connection.WithLogger(logger))

	// Optional Prometheus endpoint
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		opts = append(opts, connection.WithMetrics(metrics.New(reg)))

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			logger.Info("serving metrics", "addr", addr, "path", cfg.Metrics.Path)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	mgr, err := connection.NewManager(cfg.Server.URL, opts...)
	if err != nil {
		logger.Error("failed to create connection manager", "error", err)
		os.Exit(1)
	}

	// Subscribe to all bus events
	mgr.On(connection.EventStateTransition, func(payload any) {
		tr := payload.(connection.StateTransition)
		logger.Info("transition", "from", tr.From, "to", tr.To, "reason", tr.Reason)
	})
	mgr.On(connection.EventError, func(payload any) {
		notice := payload.(connection.ErrorNotice)
		logger.Warn("connection error", "category", notice.Category, "message", notice.Message)
	})
	mgr.On(connection.EventMessage, func(payload any) {
		env := payload.(model.Envelope)
		if *verbose {
			data, _ := json.Marshal(env)
			fmt.Println(string(data))
			return
		}
		logger.Info("message", "type", env.Type, "id", env.ID)
	})

	if err := mgr.Connect(); err != nil {
		logger.Error("connect failed", "error", err)
		os.Exit(1)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	mgr.Destroy()
	logger.Info("streamprobe stopped", "final_state", mgr.Status())
}

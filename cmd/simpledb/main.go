package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leengari/simpledb/internal/config"
	"github.com/leengari/simpledb/internal/engine"
	"github.com/leengari/simpledb/internal/logging"
	"github.com/leengari/simpledb/internal/network"
	"github.com/leengari/simpledb/internal/repl"
	"github.com/leengari/simpledb/internal/storage/manager"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	basePath := flag.String("base", cfg.BasePath, "Directory holding the databases")
	serverMode := flag.Bool("server", false, "Run in server mode")
	port := flag.Int("port", cfg.Port, "Port to listen on")
	trace := flag.Bool("trace", false, "Log storage lifecycle events")
	flag.Parse()

	cfg.BasePath = *basePath
	cfg.Port = *port

	logger, closeFn := logging.SetupLogger(cfg)
	defer closeFn()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		slog.Error("failed to create databases directory", "error", err)
		closeFn()
		os.Exit(1)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if *trace {
		opts = append(opts, engine.WithObserver(engine.NewLoggingObserver(logger)))
	}
	registry := manager.NewRegistry(cfg.BasePath, opts...)

	slog.Info("Application ready!", "base_path", cfg.BasePath)

	if *serverMode {
		slog.Info("Starting Server mode...")
		if err := network.Start(ctx, cfg.Port, registry); err != nil {
			closeFn()
			os.Exit(1)
		}
		return
	}

	slog.Info("Starting REPL mode...")
	repl.Start(ctx, registry)
}

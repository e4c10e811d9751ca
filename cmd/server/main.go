package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skypro1111/stream-asr-service/internal/asr"
	"github.com/skypro1111/stream-asr-service/internal/config"
	"github.com/skypro1111/stream-asr-service/internal/metrics"
	"github.com/skypro1111/stream-asr-service/internal/server"
	"github.com/skypro1111/stream-asr-service/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting stream-asr-service",
		slog.Int("ws_port", cfg.Server.Port),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("step_ms", cfg.Stream.StepMs),
		slog.Int("window_ms", cfg.Stream.WindowMs),
		slog.String("engine_endpoint", cfg.Engine.Endpoint))

	m := metrics.NewMetrics()

	engine, err := asr.NewClient(asr.ClientConfig{
		Endpoint:      cfg.Engine.Endpoint,
		APIKey:        cfg.Engine.APIKey,
		SampleRate:    cfg.Audio.SampleRate,
		Timeout:       cfg.Engine.GetTimeoutDuration(),
		MaxRetries:    cfg.Engine.MaxRetries,
		MaxConcurrent: cfg.Engine.MaxConcurrent,
	})
	if err != nil {
		logger.Error("failed to create engine client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	manager := stream.NewManager(engine,
		stream.OptionsFromConfig(cfg.Audio, cfg.Stream),
		cfg.Stream.GetSessionTimeoutDuration(), logger, m)

	wsServer := server.NewWebSocketServer(cfg.Server, cfg.Audio.SampleRate,
		cfg.Stream.GetTickIntervalDuration(), manager, logger, m)
	if err := wsServer.Start(); err != nil {
		logger.Error("failed to start websocket server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := server.NewHTTPServer(cfg, manager, engine, logger, m)
	if err := httpServer.Start(); err != nil {
		logger.Error("failed to start http server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("shutting down", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := wsServer.Stop(ctx); err != nil {
		logger.Error("websocket server shutdown failed", slog.String("error", err.Error()))
	}
	if err := httpServer.Stop(ctx); err != nil {
		logger.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	manager.Stop()
	engine.Close()

	logger.Info("shutdown complete")
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var output io.Writer = os.Stdout
	if cfg.Output != "" && cfg.Output != "stdout" {
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s, using stdout: %v\n", cfg.Output, err)
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(output, opts))
	}
	return slog.New(slog.NewJSONHandler(output, opts))
}

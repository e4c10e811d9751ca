package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skypro1111/stream-asr-service/internal/asr"
	"github.com/skypro1111/stream-asr-service/internal/config"
	"github.com/skypro1111/stream-asr-service/internal/metrics"
	"github.com/skypro1111/stream-asr-service/internal/stream"
)

// EngineStats exposes ASR client statistics to the monitoring API.
type EngineStats interface {
	GetStats() asr.ClientStats
}

// HTTPServer provides the monitoring and introspection API.
type HTTPServer struct {
	cfg       config.HTTPConfig
	appConfig *config.Config
	manager   *stream.Manager
	engine    EngineStats
	logger    *slog.Logger
	m         *metrics.Metrics

	server    *http.Server
	startTime time.Time
}

// NewHTTPServer creates the monitoring API server. engine may be nil when
// no stats-capable client is in use.
func NewHTTPServer(appConfig *config.Config, manager *stream.Manager, engine EngineStats, logger *slog.Logger, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		cfg:       appConfig.HTTP,
		appConfig: appConfig,
		manager:   manager,
		engine:    engine,
		logger:    logger,
		m:         m,
		startTime: time.Now(),
	}
}

// Start begins serving the monitoring API in the background.
func (h *HTTPServer) Start() error {
	if !h.cfg.Enabled {
		h.logger.Info("http monitoring api disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.withMetrics(h.handleIndex))
	mux.HandleFunc("/health", h.withMetrics(h.handleHealth))
	mux.HandleFunc("/sessions", h.withMetrics(h.handleSessions))
	mux.HandleFunc("/sessions/", h.withMetrics(h.handleSessionByID))
	mux.HandleFunc("/stats", h.withMetrics(h.handleStats))
	mux.HandleFunc("/config", h.withMetrics(h.handleConfig))
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", h.cfg.Address, h.cfg.Port)
	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	h.logger.Info("http monitoring api starting", slog.String("address", addr))

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully shuts down the monitoring API.
func (h *HTTPServer) Stop(ctx context.Context) error {
	if h.server == nil {
		return nil
	}

	if err := h.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	h.logger.Info("http monitoring api stopped")
	return nil
}

// withMetrics wraps handlers with request metrics collection
func (h *HTTPServer) withMetrics(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(wrapped, r)

		h.m.RecordHTTPRequest(r.Method, r.URL.Path,
			strconv.Itoa(wrapped.statusCode), time.Since(start).Seconds())

		if wrapped.statusCode >= 400 {
			errorType := "client_error"
			if wrapped.statusCode >= 500 {
				errorType = "server_error"
			}
			h.m.RecordHTTPError(r.Method, r.URL.Path, errorType)
		}
	}
}

// responseWriter captures the status code for metrics
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.writeError(w, http.StatusNotFound, "endpoint not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"service": "stream-asr-service",
		"endpoints": []string{
			"/health",
			"/sessions",
			"/sessions/{id}",
			"/stats",
			"/config",
			"/metrics",
		},
	})
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"uptime_seconds":  time.Since(h.startTime).Seconds(),
		"active_sessions": h.manager.Count(),
	})
}

func (h *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	infos := h.manager.Snapshot()

	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(infos),
		"sessions": infos,
	})
}

func (h *HTTPServer) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "session ID required")
		return
	}

	session := h.manager.Get(id)
	if session == nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("session %s not found", id))
		return
	}

	h.writeJSON(w, http.StatusOK, session.Info())
}

func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"uptime_seconds":  time.Since(h.startTime).Seconds(),
		"active_sessions": h.manager.Count(),
	}

	if h.engine != nil {
		stats["engine"] = h.engine.GetStats()
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.appConfig

	// API key stays out of the monitoring surface.
	h.writeJSON(w, http.StatusOK, map[string]any{
		"server": map[string]any{
			"port":             cfg.Server.Port,
			"bind_address":     cfg.Server.BindAddress,
			"max_message_size": cfg.Server.MaxMessageSize,
			"idle_timeout":     cfg.Server.IdleTimeout,
			"ping_interval":    cfg.Server.PingInterval,
		},
		"audio": map[string]any{
			"sample_rate": cfg.Audio.SampleRate,
		},
		"stream": map[string]any{
			"step_ms":          cfg.Stream.StepMs,
			"window_ms":        cfg.Stream.WindowMs,
			"keep_ms":          cfg.Stream.KeepMs,
			"max_tokens":       cfg.Stream.MaxTokens,
			"language":         cfg.Stream.Language,
			"translate":        cfg.Stream.Translate,
			"use_context":      cfg.Stream.UseContext,
			"timestamps":       cfg.Stream.Timestamps,
			"diarize":          cfg.Stream.Diarize,
			"tick_interval_ms": cfg.Stream.TickIntervalMs,
			"session_timeout":  cfg.Stream.SessionTimeout,
		},
		"engine": map[string]any{
			"endpoint":       cfg.Engine.Endpoint,
			"timeout":        cfg.Engine.Timeout,
			"max_retries":    cfg.Engine.MaxRetries,
			"max_concurrent": cfg.Engine.MaxConcurrent,
		},
	})
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

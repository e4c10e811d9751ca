package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skypro1111/stream-asr-service/internal/audio"
	"github.com/skypro1111/stream-asr-service/internal/config"
	"github.com/skypro1111/stream-asr-service/internal/metrics"
	"github.com/skypro1111/stream-asr-service/internal/protocol"
	"github.com/skypro1111/stream-asr-service/internal/stream"
)

const writeTimeout = 10 * time.Second

// WebSocketServer accepts client streams on /stream. Each connection owns
// one session: binary frames carry PCM audio, text frames carry JSON
// control messages, and transcription deltas flow back as JSON.
type WebSocketServer struct {
	cfg        config.ServerConfig
	sampleRate int
	tick       time.Duration
	manager    *stream.Manager
	logger     *slog.Logger
	m          *metrics.Metrics

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWebSocketServer creates the streaming endpoint server.
func NewWebSocketServer(cfg config.ServerConfig, sampleRate int, tick time.Duration, manager *stream.Manager, logger *slog.Logger, m *metrics.Metrics) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &WebSocketServer{
		cfg:        cfg,
		sampleRate: sampleRate,
		tick:       tick,
		manager:    manager,
		logger:     logger,
		m:          m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // browser clients connect from any origin
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins accepting WebSocket connections in the background.
func (s *WebSocketServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", s.handleStream)

	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	s.logger.Info("websocket server starting",
		slog.String("address", addr),
		slog.Int("sample_rate", s.sampleRate))

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("websocket server failed", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop closes the listener and signals open connections to wind down.
func (s *WebSocketServer) Stop(ctx context.Context) error {
	s.cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return fmt.Errorf("websocket server shutdown failed: %w", err)
		}
	}

	s.logger.Info("websocket server stopped")
	return nil
}

func (s *WebSocketServer) handleStream(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	s.m.RecordConnectionOpened()
	defer s.m.RecordConnectionClosed()

	session := s.manager.Create()
	defer s.manager.Remove(session.ID)

	c := &connection{
		server:  s,
		ws:      ws,
		session: session,
		logger: s.logger.With(
			slog.String("session_id", session.ID),
			slog.String("remote_addr", r.RemoteAddr)),
		done: make(chan struct{}),
	}

	c.logger.Info("client connected")
	c.run()
	c.logger.Info("client disconnected")
}

// connection pairs one WebSocket with its session. Two goroutines write
// to the socket (the read loop's replies and the ticker's transcriptions),
// so all writes go through writeJSON under writeMu.
type connection struct {
	server  *WebSocketServer
	ws      *websocket.Conn
	session *stream.Session
	logger  *slog.Logger

	writeMu sync.Mutex
	done    chan struct{}
}

func (c *connection) run() {
	defer c.ws.Close()
	defer close(c.done)

	cfg := c.server.cfg
	c.ws.SetReadLimit(cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(cfg.GetIdleTimeoutDuration()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.GetIdleTimeoutDuration()))
	})

	if err := c.writeJSON(protocol.NewConnected(c.session.ID, c.server.sampleRate)); err != nil {
		c.logger.Warn("failed to send greeting", slog.String("error", err.Error()))
		return
	}

	go c.tickLoop()

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("read failed", slog.String("error", err.Error()))
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(cfg.GetIdleTimeoutDuration()))

		switch msgType {
		case websocket.BinaryMessage:
			c.handleAudio(data)
		case websocket.TextMessage:
			c.handleControl(data)
		}
	}
}

// tickLoop drives periodic processing and keep-alive pings until the read
// loop exits.
func (c *connection) tickLoop() {
	procTicker := time.NewTicker(c.server.tick)
	defer procTicker.Stop()
	pingTicker := time.NewTicker(c.server.cfg.GetPingIntervalDuration())
	defer pingTicker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.server.ctx.Done():
			return
		case <-procTicker.C:
			c.process()
		case <-pingTicker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *connection) handleAudio(data []byte) {
	c.server.m.RecordAudioFrame()

	samples, err := audio.DecodeFrame(data)
	if err != nil {
		c.server.m.RecordFrameError()
		c.logger.Warn("rejected audio frame",
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()))
		c.writeJSON(protocol.NewError("unsupported audio frame: size must be a multiple of 2 or 4 bytes"))
		return
	}

	c.session.Feed(samples)
	c.process()
}

func (c *connection) handleControl(data []byte) {
	c.server.m.RecordControlFrame()

	msg, err := protocol.ParseControl(data)
	if err != nil {
		c.server.m.RecordFrameError()
		c.logger.Warn("rejected control frame", slog.String("error", err.Error()))
		c.writeJSON(protocol.NewError(err.Error()))
		return
	}

	switch msg.Type {
	case protocol.ControlConfig:
		c.session.UpdateOptions(msg.Language, msg.Translate)
		c.writeJSON(protocol.NewConfigUpdated())

	case protocol.ControlFlush:
		text, err := c.session.Flush(c.server.ctx)
		if err != nil {
			c.writeJSON(protocol.NewError("transcription failed"))
			return
		}
		c.writeJSON(protocol.NewFlushComplete(c.session.ID, text))

	case protocol.ControlReset:
		c.session.Reset()
		c.writeJSON(protocol.NewResetOK())
	}
}

// process runs one transcription cycle and forwards any new text.
func (c *connection) process() {
	delta, err := c.session.ProcessIfReady(c.server.ctx)
	if err != nil {
		c.writeJSON(protocol.NewError("transcription failed"))
		return
	}
	if delta == "" {
		return
	}

	c.writeJSON(protocol.NewTranscription(c.session.ID, delta))
}

func (c *connection) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/skypro1111/stream-asr-service/internal/asr"
	"github.com/skypro1111/stream-asr-service/internal/audio"
	"github.com/skypro1111/stream-asr-service/internal/metrics"
	"github.com/skypro1111/stream-asr-service/internal/transcript"
)

// Session holds the sliding-window transcription state for one client
// stream: the pending audio buffer, the carryover tail from the previous
// window, the prompt tokens fed back into the engine and the last full
// transcription used for diffing.
//
// A single mutex guards the state. Window extraction happens under the
// lock; the engine call does not, so Feed is never blocked by inference.
// ProcessIfReady and Flush serialize against each other on a separate
// mutex so that overlapping ticks cannot reorder engine results.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine asr.Engine
	logger *slog.Logger
	m      *metrics.Metrics

	procMu sync.Mutex

	mu           sync.Mutex
	opts         Options
	buf          *audio.RingBuffer
	carryover    []float32
	promptTokens []asr.Token
	lastText     string
	lastRun      time.Time
	lastActivity time.Time
	iterations   int
}

// NewSession creates a session with the given identity and window options.
func NewSession(id string, engine asr.Engine, opts Options, logger *slog.Logger, m *metrics.Metrics) *Session {
	now := time.Now()

	return &Session{
		ID:           id,
		CreatedAt:    now,
		engine:       engine,
		logger:       logger.With(slog.String("session_id", id)),
		m:            m,
		opts:         opts,
		buf:          audio.NewRingBuffer(2 * opts.WindowSamples),
		lastRun:      now,
		lastActivity: now,
	}
}

// Feed appends decoded samples to the pending buffer. When the buffer is
// full the oldest samples are evicted; the number of evicted samples is
// returned.
func (s *Session) Feed(samples []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.buf.Append(samples)
	s.lastActivity = time.Now()

	if dropped > 0 {
		s.m.RecordSamplesDropped(dropped)
		s.logger.Warn("buffer full, dropping oldest samples",
			slog.Int("dropped", dropped),
			slog.Int("buffered", s.buf.Len()))
	}

	return dropped
}

// ProcessIfReady runs one transcription cycle if enough audio has
// accumulated and the step interval has elapsed. It returns the
// incremental transcription, which is empty when the trigger is not met
// or when this window added nothing new.
func (s *Session) ProcessIfReady(ctx context.Context) (string, error) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	now := time.Now()

	s.mu.Lock()
	if s.buf.Len() < s.opts.StepSamples || now.Sub(s.lastRun) < s.opts.Step {
		s.mu.Unlock()
		return "", nil
	}
	window, prompt, opts := s.extractWindowLocked(now, false)
	s.mu.Unlock()

	return s.transcribe(ctx, window, prompt, opts)
}

// Flush drains all pending audio through a final transcription cycle,
// ignoring the step trigger. The buffer and carryover tail are cleared;
// prompt context and the diff baseline survive so that a stream resumed
// after a flush continues coherently.
func (s *Session) Flush(ctx context.Context) (string, error) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	s.mu.Lock()
	if s.buf.Len() == 0 {
		s.mu.Unlock()
		return "", nil
	}
	window, prompt, opts := s.extractWindowLocked(time.Now(), true)
	s.mu.Unlock()

	return s.transcribe(ctx, window, prompt, opts)
}

// Reset discards all session state: pending audio, carryover, prompt
// tokens and the diff baseline. The session identity survives.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Clear()
	s.carryover = nil
	s.promptTokens = nil
	s.lastText = ""
	s.iterations = 0
	s.lastRun = time.Now()
	s.lastActivity = s.lastRun

	s.logger.Info("session reset")
}

// UpdateOptions applies a mid-stream configuration change. Nil fields are
// left unchanged. The new options take effect from the next window.
func (s *Session) UpdateOptions(language *string, translate *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if language != nil {
		s.opts.Language = *language
	}
	if translate != nil {
		s.opts.Translate = *translate
	}
	s.lastActivity = time.Now()

	s.logger.Info("session options updated",
		slog.String("language", s.opts.Language),
		slog.Bool("translate", s.opts.Translate))
}

// LastActivity returns the time of the most recent feed, control message
// or processing cycle.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// BufferedSamples returns the number of samples awaiting processing.
func (s *Session) BufferedSamples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Info returns a point-in-time snapshot for the monitoring API.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionInfo{
		ID:               s.ID,
		CreatedAt:        s.CreatedAt,
		LastActivity:     s.lastActivity,
		DurationSeconds:  time.Since(s.CreatedAt).Seconds(),
		BufferedSamples:  s.buf.Len(),
		CarryoverSamples: len(s.carryover),
		Iterations:       s.iterations,
		Language:         s.opts.Language,
		Translate:        s.opts.Translate,
	}
}

// SessionInfo is the monitoring view of a session.
type SessionInfo struct {
	ID               string    `json:"session_id"`
	CreatedAt        time.Time `json:"created_at"`
	LastActivity     time.Time `json:"last_activity"`
	DurationSeconds  float64   `json:"duration_seconds"`
	BufferedSamples  int       `json:"buffered_samples"`
	CarryoverSamples int       `json:"carryover_samples"`
	Iterations       int       `json:"iterations"`
	Language         string    `json:"language"`
	Translate        bool      `json:"translate"`
}

// extractWindowLocked consumes pending audio and assembles the inference
// window: up to step samples of new audio (everything when flushing),
// prefixed with as much of the previous window's tail as fits within
// keep+window samples. The carryover becomes the built window, or nothing
// when flushing. Caller holds s.mu.
func (s *Session) extractWindowLocked(now time.Time, flushing bool) ([]float32, []asr.Token, Options) {
	newCount := s.buf.Len()
	if !flushing && newCount > s.opts.StepSamples {
		newCount = s.opts.StepSamples
	}

	take := s.opts.KeepSamples + s.opts.WindowSamples - newCount
	if take < 0 {
		take = 0
	}
	if take > len(s.carryover) {
		take = len(s.carryover)
	}

	window := make([]float32, 0, take+newCount)
	window = append(window, s.carryover[len(s.carryover)-take:]...)
	window = append(window, s.buf.TakeFront(newCount)...)

	if flushing {
		s.buf.Clear()
		s.carryover = nil
	} else {
		s.carryover = window
	}

	s.lastRun = now
	s.lastActivity = now

	prompt := make([]asr.Token, len(s.promptTokens))
	copy(prompt, s.promptTokens)

	return window, prompt, s.opts
}

// transcribe runs the engine on an assembled window and folds the result
// back into the session state. The engine call happens without holding
// the state lock.
func (s *Session) transcribe(ctx context.Context, window []float32, prompt []asr.Token, opts Options) (string, error) {
	s.m.RecordWindow(len(window))

	start := time.Now()
	result, err := s.engine.Infer(ctx, window, prompt, asr.Options{
		Language:  opts.Language,
		Translate: opts.Translate,
		MaxTokens: opts.MaxTokens,
	})
	s.m.RecordInference(time.Since(start).Seconds(), err)

	if err != nil {
		s.logger.Error("inference failed",
			slog.Int("window_samples", len(window)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("inference failed: %w", err)
	}

	full := formatResult(result, opts.Timestamps, opts.Diarize)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.iterations++

	if opts.UseContext && len(result.Segments) > 0 {
		s.promptTokens = s.promptTokens[:0]
		for _, seg := range result.Segments {
			s.promptTokens = append(s.promptTokens, seg.Tokens...)
		}
	}

	delta := transcript.Diff(s.lastText, full)
	if full != "" {
		s.lastText = full
	}
	if delta != "" {
		s.m.RecordDelta()
	}

	s.logger.Debug("window transcribed",
		slog.Int("window_samples", len(window)),
		slog.Int("segments", len(result.Segments)),
		slog.Int("delta_len", len(delta)),
		slog.Int("iteration", s.iterations))

	return delta, nil
}

// formatResult renders engine segments into the full transcription text.
func formatResult(result *asr.Result, timestamps, diarize bool) string {
	var b strings.Builder

	for _, seg := range result.Segments {
		if timestamps {
			b.WriteString(fmt.Sprintf("[%s --> %s]  ",
				formatTimestamp(seg.StartMs), formatTimestamp(seg.EndMs)))
		}
		b.WriteString(seg.Text)
		if diarize && seg.SpeakerTurnNext {
			b.WriteString(" [SPEAKER_TURN]")
		}
	}

	return b.String()
}

// formatTimestamp renders milliseconds as hh:mm:ss.mmm.
func formatTimestamp(ms int64) string {
	msec := ms % 1000
	sec := ms / 1000
	min := sec / 60
	sec %= 60
	hr := min / 60
	min %= 60

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hr, min, sec, msec)
}

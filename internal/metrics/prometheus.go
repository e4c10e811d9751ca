package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the streaming ASR service
type Metrics struct {
	// Connection metrics
	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter

	// Frame metrics
	AudioFramesReceived   prometheus.Counter
	ControlFramesReceived prometheus.Counter
	FrameErrors           prometheus.Counter
	SamplesDropped        prometheus.Counter

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter
	SessionDuration prometheus.Histogram

	// Inference metrics
	WindowsProcessed  prometheus.Counter
	WindowSamples     prometheus.Histogram
	InferenceDuration prometheus.Histogram
	InferenceFailures prometheus.Counter
	DeltasEmitted     prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Connection metrics
		ConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "asr_connections_active",
			Help: "Current number of open WebSocket connections",
		}),
		ConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_connections_total",
			Help: "Total number of WebSocket connections accepted",
		}),

		// Frame metrics
		AudioFramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_audio_frames_received_total",
			Help: "Total number of binary audio frames received",
		}),
		ControlFramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_control_frames_received_total",
			Help: "Total number of text control frames received",
		}),
		FrameErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_frame_errors_total",
			Help: "Total number of malformed or rejected frames",
		}),
		SamplesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_samples_dropped_total",
			Help: "Total number of buffered samples evicted under backpressure",
		}),

		// Session metrics
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "asr_sessions_active",
			Help: "Current number of active stream sessions",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_sessions_created_total",
			Help: "Total number of stream sessions created",
		}),
		SessionsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_sessions_expired_total",
			Help: "Total number of sessions removed by idle timeout",
		}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "asr_session_duration_seconds",
			Help:    "Duration of stream sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// Inference metrics
		WindowsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_windows_processed_total",
			Help: "Total number of audio windows submitted for inference",
		}),
		WindowSamples: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "asr_window_samples",
			Help:    "Size of submitted inference windows in samples",
			Buckets: prometheus.ExponentialBuckets(4000, 2, 8), // 0.25s to ~32s at 16kHz
		}),
		InferenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "asr_inference_duration_seconds",
			Help:    "Duration of ASR engine calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		InferenceFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_inference_failures_total",
			Help: "Total number of failed ASR engine calls",
		}),
		DeltasEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "asr_transcription_deltas_total",
			Help: "Total number of non-empty incremental transcriptions emitted",
		}),

		// HTTP API metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "asr_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "asr_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "asr_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordConnectionOpened tracks a new WebSocket connection
func (m *Metrics) RecordConnectionOpened() {
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Inc()
}

// RecordConnectionClosed tracks a closed WebSocket connection
func (m *Metrics) RecordConnectionClosed() {
	m.ConnectionsActive.Dec()
}

// RecordAudioFrame increments the audio frame counter
func (m *Metrics) RecordAudioFrame() {
	m.AudioFramesReceived.Inc()
}

// RecordControlFrame increments the control frame counter
func (m *Metrics) RecordControlFrame() {
	m.ControlFramesReceived.Inc()
}

// RecordFrameError increments the rejected frame counter
func (m *Metrics) RecordFrameError() {
	m.FrameErrors.Inc()
}

// RecordSamplesDropped adds to the evicted sample counter
func (m *Metrics) RecordSamplesDropped(count int) {
	if count > 0 {
		m.SamplesDropped.Add(float64(count))
	}
}

// RecordSessionCreated tracks a new stream session
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionRemoved tracks a destroyed session and its lifetime
func (m *Metrics) RecordSessionRemoved(durationSeconds float64, expired bool) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(durationSeconds)
	if expired {
		m.SessionsExpired.Inc()
	}
}

// RecordWindow records a window submitted for inference
func (m *Metrics) RecordWindow(sampleCount int) {
	m.WindowsProcessed.Inc()
	m.WindowSamples.Observe(float64(sampleCount))
}

// RecordInference records the outcome of an engine call
func (m *Metrics) RecordInference(durationSeconds float64, err error) {
	m.InferenceDuration.Observe(durationSeconds)
	if err != nil {
		m.InferenceFailures.Inc()
	}
}

// RecordDelta increments the emitted transcription counter
func (m *Metrics) RecordDelta() {
	m.DeltasEmitted.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

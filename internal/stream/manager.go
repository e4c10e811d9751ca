package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skypro1111/stream-asr-service/internal/asr"
	"github.com/skypro1111/stream-asr-service/internal/metrics"
)

// cleanupInterval is how often the manager scans for idle sessions.
const cleanupInterval = 30 * time.Second

// Manager tracks the active stream sessions and removes the ones that
// have gone idle past the configured timeout.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	engine  asr.Engine
	opts    Options
	timeout time.Duration
	logger  *slog.Logger
	m       *metrics.Metrics

	done chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a session manager and starts its cleanup routine.
func NewManager(engine asr.Engine, opts Options, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Manager {
	mgr := &Manager{
		sessions: make(map[string]*Session),
		engine:   engine,
		opts:     opts,
		timeout:  timeout,
		logger:   logger,
		m:        m,
		done:     make(chan struct{}),
	}

	mgr.wg.Add(1)
	go mgr.cleanupRoutine()

	return mgr
}

// Create registers a new session with a fresh identifier and the
// manager's default options.
func (mgr *Manager) Create() *Session {
	session := NewSession(uuid.NewString(), mgr.engine, mgr.opts, mgr.logger, mgr.m)

	mgr.mu.Lock()
	mgr.sessions[session.ID] = session
	count := len(mgr.sessions)
	mgr.mu.Unlock()

	mgr.m.RecordSessionCreated()
	mgr.logger.Info("session created",
		slog.String("session_id", session.ID),
		slog.Int("active_sessions", count))

	return session
}

// Get returns the session with the given ID, or nil.
func (mgr *Manager) Get(id string) *Session {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return mgr.sessions[id]
}

// Remove deletes a session. It returns false when the ID is unknown.
func (mgr *Manager) Remove(id string) bool {
	return mgr.remove(id, false)
}

func (mgr *Manager) remove(id string, expired bool) bool {
	mgr.mu.Lock()
	session, ok := mgr.sessions[id]
	if ok {
		delete(mgr.sessions, id)
	}
	count := len(mgr.sessions)
	mgr.mu.Unlock()

	if !ok {
		return false
	}

	duration := time.Since(session.CreatedAt)
	mgr.m.RecordSessionRemoved(duration.Seconds(), expired)
	mgr.logger.Info("session removed",
		slog.String("session_id", id),
		slog.Bool("expired", expired),
		slog.Duration("duration", duration),
		slog.Int("active_sessions", count))

	return true
}

// Count returns the number of active sessions.
func (mgr *Manager) Count() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.sessions)
}

// Snapshot returns monitoring views of all active sessions.
func (mgr *Manager) Snapshot() []SessionInfo {
	mgr.mu.RLock()
	sessions := make([]*Session, 0, len(mgr.sessions))
	for _, s := range mgr.sessions {
		sessions = append(sessions, s)
	}
	mgr.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// Stop terminates the cleanup routine. Active sessions are left in place
// for their connections to close.
func (mgr *Manager) Stop() {
	close(mgr.done)
	mgr.wg.Wait()
}

func (mgr *Manager) cleanupRoutine() {
	defer mgr.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-mgr.done:
			return
		case <-ticker.C:
			mgr.removeExpired()
		}
	}
}

func (mgr *Manager) removeExpired() {
	cutoff := time.Now().Add(-mgr.timeout)

	mgr.mu.RLock()
	var expired []string
	for id, session := range mgr.sessions {
		if session.LastActivity().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	mgr.mu.RUnlock()

	for _, id := range expired {
		mgr.remove(id, true)
	}
}

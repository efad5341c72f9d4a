package mcpadapter

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sseSessionTimeout is how long an SSE session may sit idle before
// cleanupRoutine evicts it, matching genai-toolbox's sseManager timeout.
const sseSessionTimeout = 10 * time.Minute

const sseCleanupInterval = time.Minute

// sseSession is one connected Server-Sent Events client: notifications
// queue onto events until the handler goroutine serving the connection
// drains them.
type sseSession struct {
	id         string
	events     chan []byte
	done       chan struct{}
	lastActive time.Time
}

func newSSESession() *sseSession {
	return &sseSession{
		id:         uuid.NewString(),
		events:     make(chan []byte, 64),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
}

// sessionManager tracks every connected SSE session, grounded on
// genai-toolbox's sseManager: a mutex-guarded map plus a ticker-driven
// goroutine that evicts sessions idle past sseSessionTimeout.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sseSession
}

func newSessionManager() *sessionManager {
	m := &sessionManager{sessions: make(map[string]*sseSession)}
	go m.cleanupRoutine()
	return m
}

func (m *sessionManager) add(s *sseSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.id] = s
}

func (m *sessionManager) get(id string) (*sseSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		close(s.done)
	}
}

// touch refreshes a session's idle clock; called whenever it receives a
// posted message.
func (m *sessionManager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.lastActive = time.Now()
	}
}

// broadcast queues data onto every connected session's event channel. A
// session whose channel is full (a stalled or dead client) is skipped
// rather than blocking the notifier.
func (m *sessionManager) broadcast(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		select {
		case s.events <- data:
		default:
		}
	}
}

func (m *sessionManager) cleanupRoutine() {
	ticker := time.NewTicker(sseCleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		m.evictIdle()
	}
}

func (m *sessionManager) evictIdle() {
	m.mu.Lock()
	var stale []string
	cutoff := time.Now().Add(-sseSessionTimeout)
	for id, s := range m.sessions {
		if s.lastActive.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.remove(id)
	}
}

package server

import (
	"sync"

	"github.com/CWBudde/futurec-lsp/internal/script"
)

// Session holds the caches of one open document.
type Session struct {
	MainScripts *script.MainScriptCache
	Completion  *CompletionCache
}

// Sessions maps document URIs to their sessions.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]*Session)}
}

// Get returns the session of uri, creating it on first use.
func (s *Sessions) Get(uri string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[uri]
	if !ok {
		session = &Session{
			MainScripts: &script.MainScriptCache{},
			Completion:  &CompletionCache{},
		}
		s.sessions[uri] = session
	}

	return session
}

// InvalidateMainScripts drops every cached main script. A main script may
// live in any document, so any edit can make every cache stale.
func (s *Sessions) InvalidateMainScripts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		session.MainScripts.Invalidate()
	}
}

// Close forgets the session of uri.
func (s *Sessions) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, uri)
}

// Len returns the number of sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

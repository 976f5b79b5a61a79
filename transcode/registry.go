// SPDX-License-Identifier: EPL-2.0

package transcode

import "sync"

// Registry is the set of in-flight sessions. Membership equals "currently
// running": a session leaves the registry when it finishes.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds s. A finished session is not added.
func (r *Registry) Register(s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return ErrCancelled
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.id]; ok {
		return ErrDuplicateSession
	}
	r.sessions[s.id] = s
	s.registry = r
	return nil
}

// Unregister removes s and reports whether it was present.
func (r *Registry) Unregister(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[s.id]; !ok || cur != s {
		return false
	}
	delete(r.sessions, s.id)
	return true
}

// Contains reports whether a session with id is running.
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// Lookup returns the running session with id.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of running sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CancelAll cancels every registered session and returns how many there
// were. Sessions leave the registry as their workers finish.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.Unlock()

	for _, s := range snapshot {
		s.Cancel()
	}
	return len(snapshot)
}

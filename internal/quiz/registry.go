package quiz

import "sync"

// Registry maps a chat to its single session. Group games key by chat id,
// solo games by user id; the machine is the same either way. The registry's
// own mutex covers only map operations, so unrelated chats never serialize
// on each other's session locks.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
	}
}

// Create installs a new session for the chat, first terminating any session
// already registered there. Two live sessions for one chat never coexist.
func (r *Registry) Create(chatID int64, questions []Question, organizerID int64) *Session {
	r.mu.Lock()
	old := r.sessions[chatID]
	session := NewSession(chatID, questions, organizerID)
	r.sessions[chatID] = session
	r.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return session
}

// Get looks up the chat's session without side effects.
func (r *Registry) Get(chatID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	return s, ok
}

// Terminate removes and returns the chat's session, cancelling its timer so
// no tick or expiry ever fires against a session that is no longer
// registered.
func (r *Registry) Terminate(chatID int64) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[chatID]
	if ok {
		delete(r.sessions, chatID)
	}
	r.mu.Unlock()

	if ok {
		s.Stop()
	}
	return s, ok
}

// HasLive reports whether the chat has a session that is not yet finished
// or stopped. Finished sessions stay registered for explanation browsing
// until replaced.
func (r *Registry) HasLive(chatID int64) bool {
	r.mu.Lock()
	s, ok := r.sessions[chatID]
	r.mu.Unlock()
	return ok && !s.Finished()
}

package dialogue

import "sync"

// Session is the per-user state of one in-progress form. At most one session
// exists per user; it lives until cancel, edit-restart or completion.
type Session struct {
	mu      sync.Mutex
	flow    Flow
	state   State
	answers map[string]any
}

func (s *Session) reset(flow Flow, state State) {
	s.flow = flow
	s.state = state
	s.answers = make(map[string]any)
}

// Snapshot returns a copy of the current answers for inspection.
func (s *Session) Snapshot() (Flow, State, map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := make(map[string]any, len(s.answers))
	for key, value := range s.answers {
		answers[key] = value
	}
	return s.flow, s.state, answers
}

// Store owns every live session. Access is serialized per user through the
// session mutex; different users advance in parallel.
type Store struct {
	sessions sync.Map
}

func NewStore() *Store {
	return &Store{}
}

// Get returns the user's session, creating an idle one if needed.
func (st *Store) Get(userID int64) *Session {
	value, _ := st.sessions.LoadOrStore(userID, &Session{flow: FlowNone, answers: make(map[string]any)})
	return value.(*Session)
}

// Clear drops the user's session unconditionally. Used for explicit cancel
// and after finalization.
func (st *Store) Clear(userID int64) {
	st.sessions.Delete(userID)
}

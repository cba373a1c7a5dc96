package contract

import "sync"

// Selection is the server-held state of one open contract message. The
// rating is held here, keyed by message ID, rather than parsed back out of
// the rendered message text.
type Selection struct {
	CreatorID string
	Selected  *Rating
}

type stateEntry struct {
	creatorID string
	selected  *Rating
	locked    bool
}

// State tracks the selection state of open contracts by message ID. It is
// the in-memory companion to the durable ThreadUser active-contract pointer:
// the pointer says which message is outstanding, State says what rating is
// currently picked on it.
type State struct {
	mu        sync.Mutex
	contracts map[string]*stateEntry
}

// NewState creates an empty State.
func NewState() *State {
	return &State{contracts: make(map[string]*stateEntry)}
}

// Register records a freshly created contract message.
func (s *State) Register(messageID, creatorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[messageID] = &stateEntry{creatorID: creatorID}
}

// Select records the latest rating picked on the message. Returns false if
// the message is unknown or already locked; the last selection wins under
// repeated calls.
func (s *State) Select(messageID string, r Rating) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.contracts[messageID]
	if !ok || e.locked {
		return false
	}
	e.selected = &r
	return true
}

// Get returns the current selection state for the message.
func (s *State) Get(messageID string) (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.contracts[messageID]
	if !ok {
		return Selection{}, false
	}
	return Selection{CreatorID: e.creatorID, Selected: e.selected}, true
}

// TryLock transitions the message to locked. Exactly one caller wins; every
// later call returns false. Unknown messages cannot be locked.
func (s *State) TryLock(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.contracts[messageID]
	if !ok || e.locked {
		return false
	}
	e.locked = true
	return true
}

// Unlock releases a lock taken by TryLock, making the message confirmable
// again. Called when a confirm fails before any award has been recorded.
func (s *State) Unlock(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.contracts[messageID]; ok {
		e.locked = false
	}
}

// Forget drops the entry for a message. Called after the locked render has
// been delivered; the durable pointer is already cleared by then.
func (s *State) Forget(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contracts, messageID)
}

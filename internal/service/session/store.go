package session

import (
	"sync"

	"github.com/lumehq/chat-relay/internal/model/chat"
)

// SystemPrompt seeds every new conversation as its first turn.
const SystemPrompt = "You are a helpful AI assistant. Keep your answers clear, friendly and concise."

// Store encapsulates in-memory conversation state. History lives for the
// process lifetime only.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
}

// NewStore bootstraps the in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Conversation),
	}
}

// GetOrCreate returns the conversation for sessionID, creating it seeded
// with the system turn on first use.
func (s *Store) GetOrCreate(sessionID string) *Conversation {
	s.mu.RLock()
	conv, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.sessions[sessionID]; ok {
		return conv
	}

	conv = &Conversation{
		id:    sessionID,
		turns: []chat.Turn{chat.NewTurn(chat.RoleSystem, SystemPrompt)},
	}
	s.sessions[sessionID] = conv
	return conv
}

// Get returns the conversation if it exists.
func (s *Store) Get(sessionID string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.sessions[sessionID]
	return conv, ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Conversation is the append-only transcript for one session. Turn data is
// guarded by mu; sendMu serializes in-flight send requests for the session
// so concurrent posts cannot interleave their read-stream-append cycles.
type Conversation struct {
	id string

	sendMu sync.Mutex

	mu    sync.RWMutex
	turns []chat.Turn
}

// ID returns the session identifier this conversation belongs to.
func (c *Conversation) ID() string {
	return c.id
}

// LockSend acquires the per-session send gate. At most one send request is
// processed per session at a time; distinct sessions proceed in parallel.
func (c *Conversation) LockSend() {
	c.sendMu.Lock()
}

// UnlockSend releases the per-session send gate.
func (c *Conversation) UnlockSend() {
	c.sendMu.Unlock()
}

// Append adds a turn to the transcript.
func (c *Conversation) Append(turn chat.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turn)
}

// Turns returns a copy of the transcript in conversation order.
func (c *Conversation) Turns() []chat.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make([]chat.Turn, len(c.turns))
	copy(copied, c.turns)
	return copied
}

// Len reports the number of turns recorded so far.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/trademesh/core"
)

// ErrSessionNotFound is returned when a session ID is not present in the
// store.
var ErrSessionNotFound = errors.New("session not found")

// ErrStoreClosed is returned when operations are attempted on a closed
// store.
var ErrStoreClosed = errors.New("session store closed")

// Session records one trading workflow run: every message that passed
// through the engine during the run plus arbitrary state such as the
// final workflow result.
type Session struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []core.Message `json:"messages"`
	State     map[string]any `json:"state"`
}

// New creates a session with the given ID, or a fresh random ID when
// empty.
func New(id string) *Session {
	if id == "" {
		id = core.NewID()
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		State:     map[string]any{},
	}
}

// AddMessage appends a message to the run record.
func (s *Session) AddMessage(msg core.Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now().UTC()
}

// SetState stores a state value under key.
func (s *Session) SetState(key string, value any) {
	if s.State == nil {
		s.State = map[string]any{}
	}
	s.State[key] = value
	s.UpdatedAt = time.Now().UTC()
}

// MessageCount returns the number of recorded messages.
func (s *Session) MessageCount() int { return len(s.Messages) }

// Clone returns a deep enough copy to hand across goroutine boundaries:
// the message slice and state map are copied, message payloads are
// shared (treated as immutable after routing).
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = append([]core.Message{}, s.Messages...)
	cp.State = make(map[string]any, len(s.State))
	for k, v := range s.State {
		cp.State[k] = v
	}
	return &cp
}

// Store persists workflow run sessions.
//
// Implementations must be safe for concurrent use. Write operations
// create the session lazily when it does not exist yet; Get reports
// ErrSessionNotFound instead.
type Store interface {
	// Create stores a new empty session. An empty id yields a random one.
	Create(ctx context.Context, id string) (*Session, error)

	// Get returns a copy of the stored session.
	Get(ctx context.Context, id string) (*Session, error)

	// AppendMessage adds a message to the session's run record.
	AppendMessage(ctx context.Context, id string, msg core.Message) error

	// SetState stores a state value on the session.
	SetState(ctx context.Context, id string, key string, value any) error

	// List returns the stored session IDs in unspecified order.
	List(ctx context.Context) ([]string, error)

	// Delete removes a session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, id string) error
}

package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
)

// MemoryStore keeps sessions in process memory. Sessions are stored in
// their encoded form, so a session read back never aliases one that was
// stored.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := perrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "decode session %s", id)
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if err := perrors.ValidateSessionID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode session %s", sess.ID)
	}
	s.mu.Lock()
	s.sessions[sess.ID] = memoryEntry{data: data, expiresAt: sess.ExpiresAt}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)

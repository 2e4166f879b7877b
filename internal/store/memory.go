package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AngelCh415/lead-reports/internal/models"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrEmpty    = errors.New("no dataset uploaded for session")
)

// Snapshot is a decoded copy of a session's dataset. Callers own it.
type Snapshot struct {
	SessionID string
	Filename  string
	LoadedAt  time.Time
	Dataset   models.Dataset
}

type session struct {
	filename string
	frame    []byte // nil until the first upload
	loadedAt time.Time
	touched  time.Time
}

// MemoryStore keeps one serialized dataset per session. A dataset is only
// ever replaced whole; readers decode their own copy.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func NewSessionID() string { return uuid.NewString() }

// Create registers an empty session and returns its id.
func (s *MemoryStore) Create() string {
	id := NewSessionID()
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	s.sessions[id] = &session{touched: t}
	return id
}

// Exists reports whether id is a live session, with or without data.
func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Put replaces the session's dataset, creating the session if needed.
func (s *MemoryStore) Put(id, filename string, ds models.Dataset) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: bad id %q", ErrNotFound, id)
	}
	b, err := Encode(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	s.sessions[id] = &session{filename: filename, frame: b, loadedAt: t, touched: t}
	return nil
}

func (s *MemoryStore) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	var cur session
	if ok {
		sess.touched = s.now()
		cur = *sess
	}
	s.mu.Unlock()

	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if cur.frame == nil {
		return Snapshot{}, ErrEmpty
	}
	ds, err := Decode(cur.frame)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{SessionID: id, Filename: cur.filename, LoadedAt: cur.loadedAt, Dataset: ds}, nil
}

func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kioskworks/kioskctl/internal/domain"
)

// Store persists the session projection for the life of a console session.
// Losing the stored state is never fatal: the cache silently re-derives it
// from the service.
type Store interface {
	Load() (*domain.Session, bool)
	Save(*domain.Session) error
	Clear() error
}

// MemoryStore keeps the session for the process lifetime only.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *domain.Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return nil, false
	}
	return cloneSession(s.sess), true
}

func (s *MemoryStore) Save(sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = cloneSession(sess)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

type storedSession struct {
	UserID       uint64   `json:"session_user_id"`
	Capabilities []string `json:"session_capabilities"`
}

// FileStore keeps the session as JSON in the user state directory so that
// console invocations within the same login session share one identity
// fetch. A corrupt or missing file reads as empty.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

func (s *FileStore) Load() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil || stored.UserID == 0 {
		return nil, false
	}
	return &domain.Session{
		UserID:       stored.UserID,
		Capabilities: domain.CapabilitiesFromStrings(stored.Capabilities),
	}, true
}

func (s *FileStore) Save(sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	raw, err := json.Marshal(storedSession{
		UserID:       sess.UserID,
		Capabilities: sess.Capabilities.Strings(),
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func cloneSession(sess *domain.Session) *domain.Session {
	return &domain.Session{UserID: sess.UserID, Capabilities: sess.Capabilities.Clone()}
}

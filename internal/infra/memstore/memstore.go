package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/bizverify/internal/domain/session"
)

// Store is the in-memory session + artifact store. Safe for concurrent use;
// everything lives for the process lifetime only.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*domain.Session
	artifacts map[string]map[domain.ArtifactKey][]*domain.Artifact
}

func New() *Store {
	return &Store{
		sessions:  make(map[string]*domain.Session),
		artifacts: make(map[string]map[domain.ArtifactKey][]*domain.Artifact),
	}
}

// GetOrCreate returns the existing session for id, or creates one. An empty
// id gets a generated one.
func (s *Store) GetOrCreate(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	sess := &domain.Session{
		ID:        id,
		UserID:    domain.UserID,
		CreatedAt: time.Now(),
	}
	s.sessions[id] = sess
	return sess, nil
}

// Save appends a new version for key and returns its version number,
// starting at 1.
func (s *Store) Save(_ context.Context, sessionID string, key domain.ArtifactKey, data []byte, mimeType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.artifacts[sessionID]
	if !ok {
		byKey = make(map[domain.ArtifactKey][]*domain.Artifact)
		s.artifacts[sessionID] = byKey
	}
	version := len(byKey[key]) + 1
	buf := make([]byte, len(data))
	copy(buf, data)
	byKey[key] = append(byKey[key], &domain.Artifact{
		Key:      key,
		MIMEType: mimeType,
		Data:     buf,
		Version:  version,
	})
	return version, nil
}

// Load resolves the latest version of key.
func (s *Store) Load(_ context.Context, sessionID string, key domain.ArtifactKey) (*domain.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.artifacts[sessionID][key]
	if len(versions) == 0 {
		return nil, domain.ErrArtifactNotFound
	}
	return versions[len(versions)-1], nil
}

// List returns one logical key per saved artifact name, order not
// guaranteed.
func (s *Store) List(_ context.Context, sessionID string) ([]domain.ArtifactKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.artifacts[sessionID]
	keys := make([]domain.ArtifactKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	return keys, nil
}

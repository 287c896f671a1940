package session

import (
	"context"
	"errors"
)

// ErrArtifactNotFound indicates a load for a key that was never saved in the
// session.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store port (interface untuk session lifecycle)
type Store interface {
	// GetOrCreate is idempotent: a second call with the same id returns the
	// same logical session.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
}

// Artifacts port (interface untuk session-scoped blobs)
type Artifacts interface {
	Save(ctx context.Context, sessionID string, key ArtifactKey, data []byte, mimeType string) (int, error)
	Load(ctx context.Context, sessionID string, key ArtifactKey) (*Artifact, error)
	List(ctx context.Context, sessionID string) ([]ArtifactKey, error)
}

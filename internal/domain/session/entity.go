package session

import (
	"fmt"
	"time"
)

// UserID is fixed for this deployment; the assistant serves one logical user
// per process.
const UserID = "av_assistant_user"

// Session identifies one verification attempt. In-memory only: a restart
// loses all sessions and their artifacts.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ArtifactKind enum
type ArtifactKind string

const (
	KindDocument   ArtifactKind = "document"
	KindStreetView ArtifactKind = "streetview"
	KindReport     ArtifactKind = "report"
)

// ArtifactKey is the structured artifact identity within a session. Replaces
// delimiter-encoded composite names.
type ArtifactKey struct {
	Kind ArtifactKind
	Name string
}

func (k ArtifactKey) String() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.Name)
}

// Artifact is a named binary blob owned by a session. Re-saving the same key
// produces a new version; loads resolve to the latest.
type Artifact struct {
	Key      ArtifactKey
	MIMEType string
	Data     []byte
	Version  int
}

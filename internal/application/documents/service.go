package documents

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

// ErrInvalidInput wraps caller mistakes so the transport can map them to 400.
var ErrInvalidInput = errors.New("invalid input")

// Service implements use-cases for the externally stored uploads.
type Service struct {
	Store domain.DocumentStore
}

// Upload decodes the base64 contents sent by the form and stores the file
// under (session, category, filename).
func (s *Service) Upload(ctx context.Context, sessionID, category, fileName, contents, mimeType string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	if !domain.Category(category).Valid() {
		return "", fmt.Errorf("%w: unknown document category %q", ErrInvalidInput, category)
	}
	if strings.TrimSpace(fileName) == "" {
		return "", fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(contents)
	if err != nil {
		return "", fmt.Errorf("%w: decoding contents: %v", ErrInvalidInput, err)
	}
	return s.Store.Upload(ctx, sessionID, category, fileName, data, mimeType)
}

// Remove deletes one previously uploaded file.
func (s *Service) Remove(ctx context.Context, sessionID, category, fileName string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	if !domain.Category(category).Valid() {
		return fmt.Errorf("%w: unknown document category %q", ErrInvalidInput, category)
	}
	return s.Store.Remove(ctx, sessionID, category, fileName)
}

// ListSession lists the (category, filename) pairs uploaded for a session.
func (s *Service) ListSession(ctx context.Context, sessionID string) ([]domain.DocumentRef, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	return s.Store.ListSession(ctx, sessionID)
}

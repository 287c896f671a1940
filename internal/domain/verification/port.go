package verification

import (
	"context"
	"errors"
)

// ErrNoParsedData indicates the model stream ended without a single part
// that parses as an AnalysisResponse.
var ErrNoParsedData = errors.New("No parsed data")

// Part is one element of a multi-part model message.
type Part interface{ isPart() }

// TextPart carries plain text.
type TextPart struct {
	Text string
}

// BlobPart carries raw file or image bytes.
type BlobPart struct {
	MIMEType string
	Data     []byte
}

func (TextPart) isPart() {}
func (BlobPart) isPart() {}

// Message is an ordered multi-part model request. Attachment order is
// preserved exactly as assembled.
type Message struct {
	Parts []Part
}

// Event is one element of the model response stream. Text is empty for
// non-text parts.
type Event struct {
	Text string
	Err  error
}

// Runner port: the LLM capability. Run issues one request and streams
// response events until the model is done or ctx is cancelled.
type Runner interface {
	Run(ctx context.Context, sessionID string, msg Message) (<-chan Event, error)
}

// LatLng value object
type LatLng struct {
	Lat float64
	Lng float64
}

// Geocoder port (interface untuk address lookup)
type Geocoder interface {
	Geocode(ctx context.Context, address string) (LatLng, error)
}

// StreetViewImage is one retrieved directional image.
type StreetViewImage struct {
	Data     []byte
	MIMEType string
	URL      string
	Heading  int
	Pitch    int
}

// ImageSource port (interface untuk directional imagery)
type ImageSource interface {
	Fetch(ctx context.Context, loc LatLng, heading, pitch int) (StreetViewImage, error)
}

// ScrapeResult is always well-formed: a failed fetch yields Failed=true, a
// descriptive TextContent and no links. Never surfaced as an error so the
// pipeline can keep going.
type ScrapeResult struct {
	TextContent     string
	SameDomainLinks []string
	Failed          bool
}

// Scraper port
type Scraper interface {
	Scrape(ctx context.Context, url string) ScrapeResult
}

// DocumentStore port (interface untuk external blob storage), keyed by
// (session, category, filename).
type DocumentStore interface {
	Upload(ctx context.Context, sessionID, category, fileName string, data []byte, mimeType string) (string, error)
	DownloadAsBytes(ctx context.Context, sessionID, category, fileName string) ([]byte, string, error)
	Remove(ctx context.Context, sessionID, category, fileName string) error
	ListSession(ctx context.Context, sessionID string) ([]DocumentRef, error)
}

// RunRepository port (interface untuk persistence of finished runs)
type RunRepository interface {
	Save(ctx context.Context, run *AnalysisRun) error
	Latest(ctx context.Context, limit int) ([]*AnalysisRun, error)
}

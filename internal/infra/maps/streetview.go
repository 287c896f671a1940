package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/streetview"

	// max 640x640; 600x300 gives a wide view of the frontage
	imageSize = "600x300"
)

// StreetView fetches static directional imagery. No single view is enough to
// confirm a storefront, so callers request multiple heading/pitch
// combinations and tolerate per-angle misses.
type StreetView struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewStreetView(apiKey string) *StreetView {
	return &StreetView{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewStreetViewWithBaseURL is used by tests to point at a fake provider.
func NewStreetViewWithBaseURL(apiKey, baseURL string) *StreetView {
	sv := NewStreetView(apiKey)
	sv.baseURL = baseURL
	return sv
}

type metadataResponse struct {
	Status string `json:"status"`
}

// Fetch returns the image for one heading/pitch combination. A missing angle
// (no imagery at the location, bad response) is an error for this single
// call; the caller skips it and moves to the next combination.
func (sv *StreetView) Fetch(ctx context.Context, loc domain.LatLng, heading, pitch int) (domain.StreetViewImage, error) {
	params := url.Values{}
	params.Set("size", imageSize)
	params.Set("location", fmt.Sprintf("%f,%f", loc.Lat, loc.Lng))
	params.Set("heading", fmt.Sprintf("%d", heading))
	params.Set("pitch", fmt.Sprintf("%d", pitch))

	// the stored/display link must not carry the API key; only the actual
	// requests do
	displayURL := sv.baseURL + "?" + params.Encode()
	params.Set("key", sv.apiKey)

	// the image endpoint returns a placeholder for missing imagery, so check
	// metadata first
	if err := sv.checkMetadata(ctx, params); err != nil {
		return domain.StreetViewImage{}, err
	}

	imageURL := sv.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return domain.StreetViewImage{}, err
	}
	resp, err := sv.client.Do(req)
	if err != nil {
		return domain.StreetViewImage{}, fmt.Errorf("fetching street view image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.StreetViewImage{}, fmt.Errorf("street view returned HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.StreetViewImage{}, fmt.Errorf("reading street view image: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return domain.StreetViewImage{
		Data:     data,
		MIMEType: mimeType,
		URL:      displayURL,
		Heading:  heading,
		Pitch:    pitch,
	}, nil
}

func (sv *StreetView) checkMetadata(ctx context.Context, params url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sv.baseURL+"/metadata?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := sv.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching street view metadata: %w", err)
	}
	defer resp.Body.Close()

	var meta metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return fmt.Errorf("decoding street view metadata: %w", err)
	}
	if meta.Status != "OK" {
		return fmt.Errorf("no street view imagery: status %s", meta.Status)
	}
	return nil
}

package maps

import (
	"context"
	"fmt"

	gmaps "googlemaps.github.io/maps"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

// Geocoder wraps the Google Maps geocoding API. One call per address; each
// call is independently billable.
type Geocoder struct {
	client *gmaps.Client
}

func NewGeocoder(apiKey string) (*Geocoder, error) {
	cli, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Geocoder{client: cli}, nil
}

// Geocode resolves address to the first candidate's centroid. Zero results
// is an error; the caller decides whether the run can proceed without
// coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (domain.LatLng, error) {
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return domain.LatLng{}, fmt.Errorf("geocoding %q: %w", address, err)
	}
	if len(results) == 0 {
		return domain.LatLng{}, fmt.Errorf("no geocoding results for %q", address)
	}
	loc := results[0].Geometry.Location
	return domain.LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}

package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	sessiondomain "github.com/bryanwahyu/bizverify/internal/domain/session"
)

// streetViewLink pairs a saved imagery artifact with its public link, so the
// verify stage does not have to parse artifact names.
type streetViewLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// collectImagery geocodes the business address once and then walks the
// heading/pitch grid best-effort: every fetch is admitted through the rate
// limiter, a missing angle is skipped, and whatever arrived is saved as
// session artifacts. Zero images is an acceptable outcome.
func (s *Service) collectImagery(ctx context.Context, sess *sessiondomain.Session, address string) {
	loc, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger().Warn("geocoding failed, skipping imagery", "session_id", sess.ID, "error", err)
		return
	}

	var links []streetViewLink
grid:
	for _, heading := range headings {
		for _, pitch := range pitches {
			if len(links) >= s.maxImages() {
				break grid
			}
			s.Limiter.Admit()

			img, err := s.Images.Fetch(ctx, loc, heading, pitch)
			if err != nil {
				// one missing angle never aborts the collection
				s.logger().Debug("street view angle unavailable",
					"session_id", sess.ID, "heading", heading, "pitch", pitch, "error", err)
				continue
			}

			name := fmt.Sprintf("streetview_%d_%d_%d.jpeg", heading, pitch, s.Clock.Now().Unix())
			key := sessiondomain.ArtifactKey{Kind: sessiondomain.KindStreetView, Name: name}
			if _, err := s.Artifacts.Save(ctx, sess.ID, key, img.Data, img.MIMEType); err != nil {
				s.logger().Warn("saving street view artifact", "session_id", sess.ID, "name", name, "error", err)
				continue
			}
			links = append(links, streetViewLink{Name: name, Link: img.URL})
		}
	}

	if len(links) == 0 {
		return
	}
	data, err := json.Marshal(links)
	if err != nil {
		s.logger().Warn("encoding street view links", "session_id", sess.ID, "error", err)
		return
	}
	key := sessiondomain.ArtifactKey{Kind: sessiondomain.KindReport, Name: streetViewLinksName}
	if _, err := s.Artifacts.Save(ctx, sess.ID, key, data, "application/json"); err != nil {
		s.logger().Warn("saving street view links", "session_id", sess.ID, "error", err)
	}
}

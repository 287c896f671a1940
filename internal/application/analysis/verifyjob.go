package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	sessiondomain "github.com/bryanwahyu/bizverify/internal/domain/session"
	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

func documentLabel(category domain.Category) string {
	return fmt.Sprintf("The following file is the '%s'.", category)
}

func streetViewLabel(num int, businessName, link string) string {
	return fmt.Sprintf("Street View image %d of the business '%s' (link: %s):", num, businessName, link)
}

func businessDetailsBlock(businessDetailsJSON string) string {
	return fmt.Sprintf("Provided Business Details (JSON format):\n```json\n%s\n```", businessDetailsJSON)
}

// verify assembles the multi-part message and issues the single model
// request, scanning the response stream for the first part that parses as an
// AnalysisResponse. Duration covers the model call only.
func (s *Service) verify(ctx context.Context, sess *sessiondomain.Session, cmd Command) (*domain.AnalysisResponse, time.Duration, error) {
	msg, err := s.assembleMessage(ctx, sess, cmd)
	if err != nil {
		return nil, 0, err
	}

	start := s.Clock.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := s.Runner.Run(runCtx, sess.ID, msg)
	if err != nil {
		return nil, s.Clock.Now().Sub(start), fmt.Errorf("running verification: %w", err)
	}

	// reducer: stop at the first successfully parsed text payload; stream
	// errors and unparseable parts are skipped, not fatal
	var parsed *domain.AnalysisResponse
	for ev := range events {
		if ev.Err != nil {
			s.logger().Warn("model stream error", "session_id", sess.ID, "error", ev.Err)
			continue
		}
		if ev.Text == "" {
			continue
		}
		candidate, perr := domain.ParseAnalysisResponse(ev.Text)
		if perr != nil {
			continue
		}
		parsed = candidate
		cancel()
		break
	}

	duration := s.Clock.Now().Sub(start)
	if parsed == nil {
		return nil, duration, domain.ErrNoParsedData
	}
	return parsed, duration, nil
}

// assembleMessage builds the ordered parts: labeled documents in caller
// order, the business details JSON, the website report, then the Street View
// image channel.
func (s *Service) assembleMessage(ctx context.Context, sess *sessiondomain.Session, cmd Command) (domain.Message, error) {
	type loadedDoc struct {
		data []byte
		mime string
	}

	// downloads fan out, assembly order stays exactly as submitted
	docs := make([]loadedDoc, len(cmd.Documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range cmd.Documents {
		i, ref := i, ref
		g.Go(func() error {
			data, mime, err := s.Documents.DownloadAsBytes(gctx, sess.ID, string(ref.Category), ref.FileName)
			if err != nil {
				return fmt.Errorf("loading document %s/%s: %w", ref.Category, ref.FileName, err)
			}
			docs[i] = loadedDoc{data: data, mime: mime}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Message{}, err
	}

	var parts []domain.Part
	for i, ref := range cmd.Documents {
		parts = append(parts,
			domain.TextPart{Text: documentLabel(ref.Category)},
			domain.BlobPart{MIMEType: docs[i].mime, Data: docs[i].data},
		)
	}

	parts = append(parts, domain.TextPart{Text: businessDetailsBlock(cmd.BusinessDetailsJSON)})

	reportKey := sessiondomain.ArtifactKey{Kind: sessiondomain.KindReport, Name: websiteReportName}
	if report, err := s.Artifacts.Load(ctx, sess.ID, reportKey); err == nil {
		parts = append(parts, domain.TextPart{Text: fmt.Sprintf("Website content report:\n%s", report.Data)})
	}

	parts = append(parts, s.streetViewParts(ctx, sess, cmd.Details.BusinessName)...)

	return domain.Message{Parts: parts}, nil
}

// streetViewParts loads the imagery channel: a label plus the image bytes
// per saved angle, or a single note when nothing was collected.
func (s *Service) streetViewParts(ctx context.Context, sess *sessiondomain.Session, businessName string) []domain.Part {
	linksKey := sessiondomain.ArtifactKey{Kind: sessiondomain.KindReport, Name: streetViewLinksName}
	art, err := s.Artifacts.Load(ctx, sess.ID, linksKey)
	if err != nil {
		return []domain.Part{domain.TextPart{Text: missingStreetViewMsg}}
	}

	var links []streetViewLink
	if err := json.Unmarshal(art.Data, &links); err != nil || len(links) == 0 {
		return []domain.Part{domain.TextPart{Text: missingStreetViewMsg}}
	}

	var parts []domain.Part
	num := 1
	for _, entry := range links {
		key := sessiondomain.ArtifactKey{Kind: sessiondomain.KindStreetView, Name: entry.Name}
		img, err := s.Artifacts.Load(ctx, sess.ID, key)
		if err != nil {
			s.logger().Warn("street view artifact missing", "session_id", sess.ID, "name", entry.Name)
			continue
		}
		parts = append(parts,
			domain.TextPart{Text: streetViewLabel(num, businessName, entry.Link)},
			domain.BlobPart{MIMEType: img.MIMEType, Data: img.Data},
		)
		num++
	}
	if len(parts) == 0 {
		return []domain.Part{domain.TextPart{Text: missingStreetViewMsg}}
	}
	return parts
}

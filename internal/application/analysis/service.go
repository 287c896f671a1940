package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/bizverify/internal/application"
	sessiondomain "github.com/bryanwahyu/bizverify/internal/domain/session"
	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/ratelimit"
)

// Service implements the verification pipeline use-case: scrape + imagery in
// parallel, then one verification call against the model.
type Service struct {
	Sessions  sessiondomain.Store
	Artifacts sessiondomain.Artifacts
	Documents domain.DocumentStore
	Scraper   domain.Scraper
	Geocoder  domain.Geocoder
	Images    domain.ImageSource
	Runner    domain.Runner
	Limiter   *ratelimit.Limiter
	Runs      domain.RunRepository // optional; nil disables run history
	Clock     application.Clock
	Logger    *slog.Logger

	// MaxScrapePages bounds how many same-domain subpages get scraped on top
	// of the home page.
	MaxScrapePages int
	// MaxImages bounds the best-effort Street View collection.
	MaxImages int
}

const (
	defaultMaxScrapePages = 5
	defaultMaxImages      = 6

	websiteReportName    = "website_content"
	streetViewLinksName  = "street_view_links"
	missingStreetViewMsg = "No Street View images are currently available for analysis."
)

// heading/pitch combinations tried in order; no single view is enough to
// confirm a storefront
var (
	headings = []int{0, 90, 180, 270}
	pitches  = []int{0, -10, 10}
)

// Command to run one analysis
type Command struct {
	SessionID           string
	BusinessDetailsJSON string
	Details             domain.BusinessDetails
	Documents           []domain.DocumentRef
}

// Result of one analysis run
type Result struct {
	Session  *sessiondomain.Session
	Parsed   *domain.AnalysisResponse
	Duration time.Duration
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) maxScrapePages() int {
	if s.MaxScrapePages > 0 {
		return s.MaxScrapePages
	}
	return defaultMaxScrapePages
}

func (s *Service) maxImages() int {
	if s.MaxImages > 0 {
		return s.MaxImages
	}
	return defaultMaxImages
}

// Run executes the full pipeline for one submission. Stage failures that
// still allow a structured result degrade silently; only the inability to
// produce any result comes back as an error.
func (s *Service) Run(ctx context.Context, cmd Command) (*Result, error) {
	sess, err := s.Sessions.GetOrCreate(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}

	// Stage A: both tasks are best-effort and independent, but the barrier
	// below is strict: verification only starts after both have finished.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.scrapeWebsite(gctx, sess, cmd.Details.BusinessWebsite)
		return nil
	})
	g.Go(func() error {
		s.collectImagery(gctx, sess, cmd.Details.BusinessAddress)
		return nil
	})
	_ = g.Wait()

	// Stage B
	parsed, duration, verr := s.verify(ctx, sess, cmd)

	result := &Result{Session: sess, Parsed: parsed, Duration: duration}
	s.recordRun(ctx, sess, parsed, duration)

	if verr != nil {
		return result, verr
	}
	s.logger().Info("analysis finished",
		"session_id", sess.ID,
		"duration", duration,
		"overall_status", parsed.OverallStatus(),
	)
	return result, nil
}

// LatestRuns lists recent run records for the history endpoint.
func (s *Service) LatestRuns(ctx context.Context, limit int) ([]*domain.AnalysisRun, error) {
	if s.Runs == nil {
		return nil, nil
	}
	return s.Runs.Latest(ctx, limit)
}

func (s *Service) recordRun(ctx context.Context, sess *sessiondomain.Session, parsed *domain.AnalysisResponse, duration time.Duration) {
	if s.Runs == nil {
		return
	}
	run := &domain.AnalysisRun{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  s.Clock.Now(),
	}
	if parsed != nil {
		run.OverallStatus = parsed.OverallStatus()
		if b, err := json.Marshal(parsed); err == nil {
			run.ResultJSON = string(b)
		}
	} else {
		run.OverallStatus = "failed"
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		s.logger().Warn("saving run record", "session_id", sess.ID, "error", err)
	}
}

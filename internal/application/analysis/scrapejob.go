package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sessiondomain "github.com/bryanwahyu/bizverify/internal/domain/session"
)

// scrapeWebsite composes a text report from the business website and its
// same-domain subpages, and saves it as the session's report artifact.
// Failures degrade into error text inside the report; the stage never aborts
// the pipeline.
func (s *Service) scrapeWebsite(ctx context.Context, sess *sessiondomain.Session, website string) {
	var report strings.Builder

	if strings.TrimSpace(website) == "" {
		report.WriteString("No business website was provided.")
		s.saveReport(ctx, sess, websiteReportName, report.String())
		return
	}

	report.WriteString(fmt.Sprintf("Website content report for %s\n", website))

	home := s.Scraper.Scrape(ctx, website)
	report.WriteString(fmt.Sprintf("\n## %s\n%s\n", website, home.TextContent))
	if home.Failed {
		s.logger().Warn("scraping home page failed", "session_id", sess.ID, "url", website)
		s.saveReport(ctx, sess, websiteReportName, report.String())
		return
	}

	// attempt up to MaxScrapePages subpages, collect successes, skip failures
	links := append([]string(nil), home.SameDomainLinks...)
	sort.Strings(links)

	visited := map[string]bool{website: true}
	scraped := 0
	for _, link := range links {
		if scraped >= s.maxScrapePages() {
			break
		}
		if visited[link] {
			continue
		}
		visited[link] = true

		page := s.Scraper.Scrape(ctx, link)
		scraped++
		if page.Failed {
			s.logger().Debug("scraping subpage failed", "session_id", sess.ID, "url", link)
			continue
		}
		report.WriteString(fmt.Sprintf("\n## %s\n%s\n", link, page.TextContent))
	}

	s.saveReport(ctx, sess, websiteReportName, report.String())
}

func (s *Service) saveReport(ctx context.Context, sess *sessiondomain.Session, name, content string) {
	key := sessiondomain.ArtifactKey{Kind: sessiondomain.KindReport, Name: name}
	if _, err := s.Artifacts.Save(ctx, sess.ID, key, []byte(content), "text/plain"); err != nil {
		s.logger().Warn("saving report artifact", "session_id", sess.ID, "name", name, "error", err)
	}
}

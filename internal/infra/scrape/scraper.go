package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
)

const defaultTimeout = 15 * time.Second

// browser-like header set; bare Go user agents get blocked by anti-bot
// defenses on small-business sites.
var requestHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
		" (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36",
	"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif," +
		"image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
	"Accept-Language":           "en-US,en;q=0.9",
	"Referer":                   "https://www.google.com/",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

var (
	horizontalWS = regexp.MustCompile(`[ \t]+`)
	verticalWS   = regexp.MustCompile(`\s*\n\s*`)
)

// Scrape fetches rawURL and extracts visible text plus deduplicated
// same-domain links. Failures are recovered: the result carries an error
// description as its text and no links, so the pipeline can keep going.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) domain.ScrapeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errResult(fmt.Errorf("building request: %w", err))
	}
	for k, v := range requestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errResult(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errResult(fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return errResult(fmt.Errorf("parsing HTML: %w", err))
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return errResult(fmt.Errorf("parsing URL: %w", err))
	}

	var text strings.Builder
	links := make(map[string]bool)
	collect(doc, base, &text, links)

	content := horizontalWS.ReplaceAllString(text.String(), " ")
	content = verticalWS.ReplaceAllString(content, "\n")

	out := domain.ScrapeResult{TextContent: strings.TrimSpace(content)}
	for link := range links {
		out.SameDomainLinks = append(out.SameDomainLinks, link)
	}
	return out
}

func errResult(err error) domain.ScrapeResult {
	return domain.ScrapeResult{
		TextContent: fmt.Sprintf("Error accessing website: %v", err),
		Failed:      true,
	}
}

// collect walks the DOM picking up visible text and same-host hrefs.
func collect(n *html.Node, base *url.URL, text *strings.Builder, links map[string]bool) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "a":
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref)
				if abs.Host == base.Host {
					links[abs.String()] = true
				}
			}
		}
	case html.TextNode:
		text.WriteString(n.Data)
		text.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, base, text, links)
	}
}

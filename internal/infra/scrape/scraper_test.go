package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html>
<head><title>Acme Garage Doors</title><style>body { color: red }</style></head>
<body>
  <h1>Acme   Garage Doors</h1>
  <script>var tracking = true;</script>
  <p>Repairs    and   installations
     since 1992.</p>
  <a href="/services">Services</a>
  <a href="/services">Services again</a>
  <a href="/contact">Contact</a>
  <a href="https://www.facebook.com/acme">Facebook</a>
</body>
</html>`

func TestScrapeExtractsTextAndSameDomainLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	res := New(0).Scrape(context.Background(), srv.URL)

	assert.False(t, res.Failed)
	assert.Contains(t, res.TextContent, "Acme Garage Doors")
	assert.Contains(t, res.TextContent, "Repairs and installations")
	assert.NotContains(t, res.TextContent, "tracking")
	assert.NotContains(t, res.TextContent, "color: red")

	// two same-domain targets, deduplicated; cross-domain dropped
	require.Len(t, res.SameDomainLinks, 2)
	assert.ElementsMatch(t, []string{srv.URL + "/services", srv.URL + "/contact"}, res.SameDomainLinks)
}

func TestScrapeNonOKStatusIsRecovered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	res := New(0).Scrape(context.Background(), srv.URL)
	assert.True(t, res.Failed)
	assert.Contains(t, res.TextContent, "Error accessing website")
	assert.Contains(t, res.TextContent, "403")
	assert.Empty(t, res.SameDomainLinks)
}

func TestScrapeConnectionErrorIsRecovered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	res := New(time.Second).Scrape(context.Background(), srv.URL)
	assert.True(t, res.Failed)
	assert.Contains(t, res.TextContent, "Error accessing website")
	assert.Empty(t, res.SameDomainLinks)
}

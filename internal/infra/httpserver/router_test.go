package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bizverify/internal/application"
	"github.com/bryanwahyu/bizverify/internal/application/analysis"
	"github.com/bryanwahyu/bizverify/internal/application/documents"
	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/infra/memstore"
	"github.com/bryanwahyu/bizverify/internal/ratelimit"
)

const validResponse = `{
	"high_level_summary": "Looks fine.",
	"structured_analysis": [
		{"aspect": "Business Name Verification", "status": "Green", "justification": "matches", "evidence_references": []}
	]
}`

type stubRunner struct {
	text string
}

func (s *stubRunner) Run(context.Context, string, domain.Message) (<-chan domain.Event, error) {
	ch := make(chan domain.Event, 1)
	if s.text != "" {
		ch <- domain.Event{Text: s.text}
	}
	close(ch)
	return ch, nil
}

type stubScraper struct{}

func (stubScraper) Scrape(context.Context, string) domain.ScrapeResult {
	return domain.ScrapeResult{TextContent: "Error accessing website: offline", Failed: true}
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(context.Context, string) (domain.LatLng, error) {
	return domain.LatLng{}, fmt.Errorf("no results")
}

type stubImages struct{}

func (stubImages) Fetch(context.Context, domain.LatLng, int, int) (domain.StreetViewImage, error) {
	return domain.StreetViewImage{}, fmt.Errorf("unavailable")
}

type stubDocStore struct {
	objects map[string][]byte
	removed []string
}

func (s *stubDocStore) key(sessionID, category, fileName string) string {
	return sessionID + "/" + category + "/" + fileName
}

func (s *stubDocStore) Upload(_ context.Context, sessionID, category, fileName string, data []byte, _ string) (string, error) {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	key := s.key(sessionID, category, fileName)
	s.objects[key] = data
	return "s3://test/" + key, nil
}

func (s *stubDocStore) DownloadAsBytes(_ context.Context, sessionID, category, fileName string) ([]byte, string, error) {
	data, ok := s.objects[s.key(sessionID, category, fileName)]
	if !ok {
		return nil, "", fmt.Errorf("not found")
	}
	return data, "application/pdf", nil
}

func (s *stubDocStore) Remove(_ context.Context, sessionID, category, fileName string) error {
	key := s.key(sessionID, category, fileName)
	delete(s.objects, key)
	s.removed = append(s.removed, key)
	return nil
}

func (s *stubDocStore) ListSession(_ context.Context, sessionID string) ([]domain.DocumentRef, error) {
	var refs []domain.DocumentRef
	for key := range s.objects {
		rest := strings.TrimPrefix(key, sessionID+"/")
		category, fileName, ok := strings.Cut(rest, "/")
		if !ok {
			continue
		}
		refs = append(refs, domain.DocumentRef{Category: domain.Category(category), FileName: fileName})
	}
	return refs, nil
}

func newTestRouter(runner domain.Runner, store domain.DocumentStore) http.Handler {
	mem := memstore.New()
	svc := &analysis.Service{
		Sessions:  mem,
		Artifacts: mem,
		Documents: store,
		Scraper:   stubScraper{},
		Geocoder:  stubGeocoder{},
		Images:    stubImages{},
		Runner:    runner,
		Limiter:   ratelimit.New(1000, time.Second),
		Clock:     application.FixedClock{T: time.Unix(1700000000, 0)},
	}
	docsSvc := &documents.Service{Store: store}
	return NewRouter(svc, docsSvc, nil)
}

func postForm(t *testing.T, h http.Handler, path, sessionID string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func analysisForm() url.Values {
	return url.Values{
		"business_details_json": {`{"business_name":"Apex Plumbing","business_type":"Plumber","business_sub_type":"Service Area Business","business_address":"12 Main St"}`},
		"documents_json":        {`[]`},
	}
}

func TestRunAnalysisReturnsParsedResult(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	rec := postForm(t, h, "/run_analysis", "sess-1", analysisForm())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Looks fine.", resp.HighLevelSummary)
	require.Len(t, resp.StructuredAnalysis, 1)
	assert.Equal(t, domain.StatusGreen, resp.StructuredAnalysis[0].Status)
}

func TestRunAnalysisNoParsedDataIs500(t *testing.T) {
	// model never produces a parseable part
	h := newTestRouter(&stubRunner{text: "garbage"}, &stubDocStore{})

	rec := postForm(t, h, "/run_analysis", "sess-1", analysisForm())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No parsed data", body["error"])
}

func TestRunAnalysisGeneratesSessionWhenHeaderAbsent(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	rec := postForm(t, h, "/run_analysis", "", analysisForm())
	require.Equal(t, http.StatusOK, rec.Code)

	// generated session id comes back so the client can reuse it
	assert.NotEmpty(t, rec.Header().Get(sessionHeader))
}

func TestRunAnalysisEchoesSessionHeader(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	rec := postForm(t, h, "/run_analysis", "sess-1", analysisForm())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", rec.Header().Get(sessionHeader))
}

func TestRunAnalysisRejectsBadInput(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	t.Run("malformed session header", func(t *testing.T) {
		rec := postForm(t, h, "/run_analysis", "has spaces!", analysisForm())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("malformed business details", func(t *testing.T) {
		form := analysisForm()
		form.Set("business_details_json", "{not json")
		rec := postForm(t, h, "/run_analysis", "sess-1", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown document category", func(t *testing.T) {
		form := analysisForm()
		form.Set("documents_json", `[["Tax Return","ret.pdf"]]`)
		rec := postForm(t, h, "/run_analysis", "sess-1", form)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadAndSessionInfo(t *testing.T) {
	store := &stubDocStore{}
	h := newTestRouter(&stubRunner{text: validResponse}, store)

	form := url.Values{
		"sub_dir":   {"Business License"},
		"file_name": {"license.pdf"},
		"mime_type": {"application/pdf"},
		"contents":  {base64.StdEncoding.EncodeToString([]byte("license-bytes"))},
	}
	rec := postForm(t, h, "/upload_document", "sess-1", form)
	require.Equal(t, http.StatusOK, rec.Code)

	var up map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, "uploaded", up["status"])
	assert.Equal(t, "license.pdf", up["file_name"])

	req := httptest.NewRequest(http.MethodGet, "/session_info/sess-1", nil)
	infoRec := httptest.NewRecorder()
	h.ServeHTTP(infoRec, req)
	require.Equal(t, http.StatusOK, infoRec.Code)

	var info struct {
		SessionID string `json:"session_id"`
		Documents []struct {
			Category string `json:"Category"`
			FileName string `json:"FileName"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(infoRec.Body.Bytes(), &info))
	assert.Equal(t, "sess-1", info.SessionID)
	require.Len(t, info.Documents, 1)
	assert.Equal(t, "Business License", info.Documents[0].Category)
}

func TestUploadRejectsUnknownCategory(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	form := url.Values{
		"sub_dir":   {"Tax Return"},
		"file_name": {"ret.pdf"},
		"contents":  {base64.StdEncoding.EncodeToString([]byte("x"))},
	}
	rec := postForm(t, h, "/upload_document", "sess-1", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveDocument(t *testing.T) {
	store := &stubDocStore{}
	_, err := store.Upload(context.Background(), "sess-1", "Business License", "license.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	h := newTestRouter(&stubRunner{text: validResponse}, store)

	form := url.Values{
		"sub_dir":   {"Business License"},
		"file_name": {"license.pdf"},
	}
	rec := postForm(t, h, "/remove_document", "sess-1", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sess-1/Business License/license.pdf"}, store.removed)
}

func TestLatestRunsWithoutRepo(t *testing.T) {
	h := newTestRouter(&stubRunner{text: validResponse}, &stubDocStore{})

	req := httptest.NewRequest(http.MethodGet, "/runs/latest", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

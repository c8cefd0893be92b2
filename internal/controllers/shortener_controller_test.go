package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/models"
	"linkly-be/internal/service"
)

// fakeLinkService scripts registry behavior per test case
type fakeLinkService struct {
	shortenResp    *models.ShortenResponse
	shortenCreated bool
	shortenErr     error
	resolveURL     string
	resolveErr     error
	statsResp      *models.StatsResponse
	statsErr       error
	timeline       []models.TimelineBucket
	timelineErr    error
	userLinks      []*models.StatsResponse
	userLinksErr   error
}

func (f *fakeLinkService) Shorten(req *models.ShortenRequest, userID *string) (*models.ShortenResponse, bool, error) {
	return f.shortenResp, f.shortenCreated, f.shortenErr
}

func (f *fakeLinkService) Resolve(shortCode string, click service.ClickInfo) (string, error) {
	return f.resolveURL, f.resolveErr
}

func (f *fakeLinkService) Stats(shortCode string) (*models.StatsResponse, error) {
	return f.statsResp, f.statsErr
}

func (f *fakeLinkService) Timeline(shortCode string, hours int) ([]models.TimelineBucket, error) {
	return f.timeline, f.timelineErr
}

func (f *fakeLinkService) UserLinks(userID string) ([]*models.StatsResponse, error) {
	return f.userLinks, f.userLinksErr
}

func setupRouter(svc service.LinkService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewShortenerController(svc)

	router := gin.New()
	router.GET("/:shortCode", controller.Redirect)
	api := router.Group("/api")
	api.POST("/shorten", controller.Shorten)
	api.GET("/stats/:shortCode", controller.Stats)
	api.GET("/stats/:shortCode/timeline", controller.Timeline)
	return router
}

func postShorten(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/shorten", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestShorten_Created(t *testing.T) {
	svc := &fakeLinkService{
		shortenResp: &models.ShortenResponse{
			ShortCode:   "Ab3xY9",
			ShortURL:    "http://localhost:8080/Ab3xY9",
			OriginalURL: "https://example.com",
			CreatedAt:   time.Now(),
		},
		shortenCreated: true,
	}
	router := setupRouter(svc)

	w := postShorten(router, `{"url": "https://example.com"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.ShortenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ShortCode != "Ab3xY9" {
		t.Errorf("expected short code Ab3xY9, got %s", resp.ShortCode)
	}
	if resp.ShortURL != "http://localhost:8080/Ab3xY9" {
		t.Errorf("unexpected short URL %s", resp.ShortURL)
	}
}

func TestShorten_ExistingMapping(t *testing.T) {
	svc := &fakeLinkService{
		shortenResp: &models.ShortenResponse{
			ShortCode:   "Ab3xY9",
			ShortURL:    "http://localhost:8080/Ab3xY9",
			OriginalURL: "https://example.com",
		},
		shortenCreated: false,
	}
	router := setupRouter(svc)

	w := postShorten(router, `{"url": "https://example.com"}`)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for a resubmitted URL, got %d", w.Code)
	}
}

func TestShorten_InvalidBody(t *testing.T) {
	router := setupRouter(&fakeLinkService{})

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"missing url field", `{"foo": "bar"}`},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postShorten(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestShorten_InvalidURL(t *testing.T) {
	router := setupRouter(&fakeLinkService{shortenErr: service.ErrInvalidURL})

	w := postShorten(router, `{"url": "not-a-url"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Errorf("expected an error body, got %s", w.Body.String())
	}
}

func TestShorten_AliasConflict(t *testing.T) {
	router := setupRouter(&fakeLinkService{shortenErr: service.ErrAliasTaken})

	w := postShorten(router, `{"url": "https://example.com", "alias": "taken"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestRedirect(t *testing.T) {
	router := setupRouter(&fakeLinkService{resolveURL: "https://example.com/landing"})

	req := httptest.NewRequest(http.MethodGet, "/Ab3xY9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://example.com/landing" {
		t.Errorf("expected Location https://example.com/landing, got %s", loc)
	}
}

func TestRedirect_NotFound(t *testing.T) {
	router := setupRouter(&fakeLinkService{resolveErr: service.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/doesnotexist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStats(t *testing.T) {
	svc := &fakeLinkService{
		statsResp: &models.StatsResponse{
			ShortCode:   "Ab3xY9",
			OriginalURL: "https://example.com",
			Clicks:      42,
		},
	}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/Ab3xY9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp models.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Clicks != 42 {
		t.Errorf("expected 42 clicks, got %d", resp.Clicks)
	}
}

func TestStats_NotFound(t *testing.T) {
	router := setupRouter(&fakeLinkService{statsErr: service.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/stats/doesnotexist", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestTimeline(t *testing.T) {
	svc := &fakeLinkService{
		timeline: []models.TimelineBucket{
			{Time: time.Now().Truncate(time.Hour), Count: 3},
		},
	}
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/Ab3xY9/timeline?hours=48", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		ShortCode string                  `json:"short_code"`
		Hours     int                     `json:"hours"`
		Timeline  []models.TimelineBucket `json:"timeline"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Hours != 48 {
		t.Errorf("expected hours=48, got %d", resp.Hours)
	}
	if len(resp.Timeline) != 1 || resp.Timeline[0].Count != 3 {
		t.Errorf("unexpected timeline %+v", resp.Timeline)
	}
}

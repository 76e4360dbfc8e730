// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/arlo-hs/reelay/internal/config"
	"github.com/arlo-hs/reelay/internal/models"
	"github.com/arlo-hs/reelay/internal/recommend"
)

const testContentID = "4f8b9a52-3c1d-4e8f-9a6b-2d7c8e1f0a3b"

// fakeFeed implements FeedService.
type fakeFeed struct {
	page      *models.FeedPage
	cached    bool
	err       error
	refreshed []string
}

func (f *fakeFeed) GetMainFeed(_ context.Context, _, _, _ string, _ int) (*models.FeedPage, bool, error) {
	return f.page, f.cached, f.err
}

func (f *fakeFeed) GetFollowingFeed(_ context.Context, _, _ string, _ int) (*models.FeedPage, error) {
	return f.page, f.err
}

func (f *fakeFeed) Refresh(_ context.Context, userID string) error {
	f.refreshed = append(f.refreshed, userID)
	return f.err
}

// fakeInteractions implements InteractionService with a fixed counter.
type fakeInteractions struct {
	count int64
	err   error
	calls []string
}

func (f *fakeInteractions) op(name string) (int64, error) {
	f.calls = append(f.calls, name)
	return f.count, f.err
}

func (f *fakeInteractions) Like(context.Context, string, string) (int64, error) {
	return f.op("like")
}
func (f *fakeInteractions) Unlike(context.Context, string, string) (int64, error) {
	return f.op("unlike")
}
func (f *fakeInteractions) Save(context.Context, string, string) (int64, error) {
	return f.op("save")
}
func (f *fakeInteractions) Unsave(context.Context, string, string) (int64, error) {
	return f.op("unsave")
}
func (f *fakeInteractions) Share(context.Context, string, string) (int64, error) {
	return f.op("share")
}
func (f *fakeInteractions) View(context.Context, string, string) (int64, error) {
	return f.op("view")
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
	}
}

func newTestRouter(feed *fakeFeed, interactions *fakeInteractions) http.Handler {
	handler := NewHandler(feed, interactions, nil, nil, "test")
	return NewRouter(handler, testServerConfig()).Setup()
}

func doRequest(t *testing.T, h http.Handler, method, path, userID string) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, &resp
}

func TestFeedEndpoint(t *testing.T) {
	feed := &fakeFeed{
		page: &models.FeedPage{
			Content:    []models.FeedItem{{ContentID: testContentID}},
			NextCursor: "20",
			HasNext:    true,
		},
		cached: true,
	}
	h := newTestRouter(feed, &fakeInteractions{})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/feed?limit=20&language=en", "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("status field = %q", resp.Status)
	}
	if !resp.Metadata.Cached {
		t.Error("metadata should report cached page")
	}

	data, _ := json.Marshal(resp.Data)
	var page models.FeedPage
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("data is not a feed page: %v", err)
	}
	if page.NextCursor != "20" || !page.HasNext || len(page.Content) != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestFeedRequiresUserID(t *testing.T) {
	h := newTestRouter(&fakeFeed{page: &models.FeedPage{}}, &fakeInteractions{})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/feed", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestFeedUnavailableWhenProviderDown(t *testing.T) {
	feed := &fakeFeed{err: recommend.ErrUnavailable}
	h := newTestRouter(feed, &fakeInteractions{})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/feed", "u1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "FEED_UNAVAILABLE" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestFeedRejectsBadLimit(t *testing.T) {
	h := newTestRouter(&fakeFeed{page: &models.FeedPage{}}, &fakeInteractions{})

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/feed?limit=-3", "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRefreshFeedEndpoint(t *testing.T) {
	feed := &fakeFeed{page: &models.FeedPage{}}
	h := newTestRouter(feed, &fakeInteractions{})

	rec, _ := doRequest(t, h, http.MethodPost, "/api/v1/feed/refresh", "u7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(feed.refreshed) != 1 || feed.refreshed[0] != "u7" {
		t.Errorf("refreshed = %v", feed.refreshed)
	}
}

func TestInteractionEndpoints(t *testing.T) {
	tests := []struct {
		method string
		path   string
		op     string
		key    string
	}{
		{http.MethodPost, "/like", "like", "likes"},
		{http.MethodDelete, "/like", "unlike", "likes"},
		{http.MethodPost, "/save", "save", "saves"},
		{http.MethodDelete, "/save", "unsave", "saves"},
		{http.MethodPost, "/share", "share", "shares"},
		{http.MethodPost, "/view", "view", "views"},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			interactions := &fakeInteractions{count: 42}
			h := newTestRouter(&fakeFeed{}, interactions)

			rec, resp := doRequest(t, h, tt.method,
				"/api/v1/content/"+testContentID+tt.path, "u1")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if len(interactions.calls) != 1 || interactions.calls[0] != tt.op {
				t.Errorf("calls = %v, want [%s]", interactions.calls, tt.op)
			}

			data, _ := json.Marshal(resp.Data)
			var counts map[string]int64
			if err := json.Unmarshal(data, &counts); err != nil {
				t.Fatalf("data is not a counter map: %v", err)
			}
			if counts[tt.key] != 42 {
				t.Errorf("data = %v, want %s=42", counts, tt.key)
			}
		})
	}
}

func TestInteractionRejectsMalformedContentID(t *testing.T) {
	h := newTestRouter(&fakeFeed{}, &fakeInteractions{})

	rec, resp := doRequest(t, h, http.MethodPost, "/api/v1/content/not-a-uuid/like", "u1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestInteractionFailure(t *testing.T) {
	interactions := &fakeInteractions{err: errors.New("db down")}
	h := newTestRouter(&fakeFeed{}, interactions)

	rec, resp := doRequest(t, h, http.MethodPost,
		"/api/v1/content/"+testContentID+"/like", "u1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "INTERACTION_FAILED" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(&fakeFeed{}, &fakeInteractions{})

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec, resp := doRequest(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
		if resp.Status != "success" {
			t.Errorf("%s status field = %q", path, resp.Status)
		}
	}
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	handler := NewHandler(&fakeFeed{}, &fakeInteractions{},
		func(context.Context) error { return errors.New("connection refused") },
		nil, "test")
	h := NewRouter(handler, testServerConfig()).Setup()

	rec, resp := doRequest(t, h, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "SERVICE_ERROR" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	h := newTestRouter(&fakeFeed{}, &fakeInteractions{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want echoed req-123", got)
	}
}

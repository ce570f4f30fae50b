package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestRouteRegistration verifies every route dispatches through the full
// middleware chain to a handler that recognizes the method.
func TestRouteRegistration(t *testing.T) {
	prev := RateLimitPerSecond
	RateLimitPerSecond = 1000
	defer func() { RateLimitPerSecond = prev }()

	mux := NewMux(&Stores{NoticeStore: newMockNoticeStore()}, Options{AuthorID: "USER01"})

	tests := []struct {
		name       string
		method     string
		path       string
		json       bool
		body       string
		wantStatus int
	}{
		{
			name:       "root redirects to board",
			method:     "GET",
			path:       "/",
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "notice list page",
			method:     "GET",
			path:       "/notice/list",
			wantStatus: http.StatusOK,
		},
		{
			name:       "registration form page",
			method:     "GET",
			path:       "/notice/reg",
			wantStatus: http.StatusOK,
		},
		{
			name:       "detail page rejects missing nSeq",
			method:     "GET",
			path:       "/notice/info",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "edit page rejects missing nSeq",
			method:     "GET",
			path:       "/notice/edit",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "api list",
			method:     "GET",
			path:       "/api/notices",
			wantStatus: http.StatusOK,
		},
		{
			name:       "api insert",
			method:     "POST",
			path:       "/api/notice/insert",
			json:       true,
			body:       `{"title":"t","noticeYn":"N","contents":"c"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "api insert rejects GET",
			method:     "GET",
			path:       "/api/notice/insert",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "api update rejects GET",
			method:     "GET",
			path:       "/api/notice/update",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "api delete rejects GET",
			method:     "GET",
			path:       "/api/notice/delete",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown path",
			method:     "GET",
			path:       "/nonexistent",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.json {
				req = jsonRequest(tt.method, tt.path, tt.body)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d. Body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

package server

import (
	"net/http/httptest"
	"testing"
)

func TestPathParam(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		suffix string
		want   string
	}{
		{"/api/watchlist/AMD", "/api/watchlist/", "", "AMD"},
		{"/api/watchlist/AMD/extra", "/api/watchlist/", "", "AMD"},
		{"/api/watchlist/", "/api/watchlist/", "", ""},
		{"/other", "/api/watchlist/", "", ""},
	}

	for _, tc := range tests {
		r := httptest.NewRequest("GET", tc.path, nil)
		if got := PathParam(r, tc.prefix, tc.suffix); got != tc.want {
			t.Errorf("PathParam(%q): got %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest("POST", "/x", nil)
	rec := httptest.NewRecorder()
	if RequireMethod(rec, r, "GET") {
		t.Error("POST should not satisfy GET")
	}
	if rec.Code != 405 {
		t.Errorf("status: got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET" {
		t.Errorf("allow header: got %q", rec.Header().Get("Allow"))
	}
}

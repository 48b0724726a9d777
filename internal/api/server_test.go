package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/oscillatelabsllc/sidequest/internal/db"
	"github.com/oscillatelabsllc/sidequest/internal/recommend"
	"github.com/oscillatelabsllc/sidequest/internal/tracker"
)

func TestHealthAndMetadata(t *testing.T) {
	h := setupTestServer(t).Handler()

	for _, path := range []string{"/health", "/ready", "/openapi.json", "/metrics", "/api/v1/status"} {
		t.Run(path, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, path, "")
			if rec.Code != http.StatusOK {
				t.Errorf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
			t.Errorf("Expected request id abc-123, got %q", got)
		}
	})
}

func TestAdventureRoutes(t *testing.T) {
	h := setupTestServer(t).Handler()

	t.Run("log adventure", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/adventures",
			`{"participants":["Amit","Rahul"],"category":"Concert","date":"2024-03-01"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid category is a bad request", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/adventures",
			`{"participants":["Amit","Rahul"],"category":"Skydiving","date":"2024-03-01"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("single participant is a bad request", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/adventures",
			`{"participants":["Amit"],"category":"Concert"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/adventures", `{`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("history", func(t *testing.T) {
		var out struct {
			Count int `json:"count"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/adventures/2024-03-01", ""), &out)
		if out.Count != 2 {
			t.Errorf("Expected 2 entries, got %d", out.Count)
		}
	})

	t.Run("buddies", func(t *testing.T) {
		var out struct {
			Buddies []struct {
				Name  string `json:"name"`
				Count int    `json:"count"`
			} `json:"buddies"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/users/Amit/buddies", ""), &out)
		if len(out.Buddies) != 1 || out.Buddies[0].Name != "Rahul" || out.Buddies[0].Count != 2 {
			t.Errorf("Unexpected buddies: %+v", out.Buddies)
		}

		rec := doRequest(t, h, http.MethodGet, "/api/v1/users/Amit/buddies?limit=x", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
		}
	})

	t.Run("trend and badge", func(t *testing.T) {
		var trend struct {
			Trend []struct {
				Category string `json:"category"`
				Count    int    `json:"count"`
			} `json:"trend"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/users/Rahul/trend", ""), &trend)
		if len(trend.Trend) != 1 || trend.Trend[0].Category != "Concert" || trend.Trend[0].Count != 2 {
			t.Errorf("Unexpected trend: %+v", trend.Trend)
		}

		var badge struct {
			Badge    string   `json:"badge"`
			Unlocked []string `json:"unlocked"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/users/Rahul/badge", ""), &badge)
		if badge.Badge != "None" || len(badge.Unlocked) != 0 {
			t.Errorf("Unexpected badge: %+v", badge)
		}
	})

	t.Run("recommendations", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/recommendations", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without group, got %d", rec.Code)
		}

		var out struct {
			Recommendations []string `json:"recommendations"`
			Message         string   `json:"message"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/recommendations?group=Amit-Rahul", ""), &out)
		if len(out.Recommendations) != 1 || out.Recommendations[0] != "Concert" {
			t.Errorf("Unexpected recommendations: %+v", out)
		}

		out.Recommendations, out.Message = nil, ""
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/recommendations?group=Nobody", ""), &out)
		if len(out.Recommendations) != 0 || out.Message != recommend.NoDataMessage {
			t.Errorf("Expected no-data response, got %+v", out)
		}
	})

	t.Run("model lifecycle", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/model", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "model_id") {
			t.Errorf("Unexpected rebuild response %d: %s", rec.Code, rec.Body.String())
		}

		rec = doRequest(t, h, http.MethodDelete, "/api/v1/model", "")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}

		var status struct {
			ModelState string `json:"model_state"`
			Entries    int    `json:"entries"`
		}
		decode(t, doRequest(t, h, http.MethodGet, "/api/v1/status", ""), &status)
		if status.ModelState != "no_model" || status.Entries != 2 {
			t.Errorf("Unexpected status: %+v", status)
		}
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	store, err := db.Open(context.Background(), "file", filepath.Join(dir, "adventures.json"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rec := recommend.New(filepath.Join(dir, "model.gob.gz"), store)
	return NewServer(tracker.New(store, rec), "8080", nil)
}

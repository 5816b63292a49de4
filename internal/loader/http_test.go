package loader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHTTPLoaderMissingBaseURL(t *testing.T) {
	l := NewHTTP(HTTPOptions{}, noopLogger())
	if _, err := l.LoadSeries(context.Background()); err == nil {
		t.Fatal("missing base URL must fail")
	}
}

func TestHTTPLoaderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"errorType": "bad"})
	}))
	defer srv.Close()

	l := NewHTTP(HTTPOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := l.LoadSeries(context.Background()); err == nil {
		t.Fatal("HTTP 400 must fail")
	}
}

func TestHTTPLoaderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sentiment" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"series": []map[string]any{
				{"date": "2020-01-02", "value": 0.5},
				{"date": "2020-01-01", "value": -0.25},
			},
		})
	}))
	defer srv.Close()

	l := NewHTTP(HTTPOptions{
		BaseURL:   srv.URL,
		Path:      "/v1/sentiment",
		Timeout:   time.Second,
		UserAgent: "test",
	}, noopLogger())

	points, err := l.LoadSeries(context.Background())
	if err != nil {
		t.Fatalf("LoadSeries returned error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Fatal("series must come back sorted ascending")
	}
	if !points[1].Value.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected value %s", points[1].Value)
	}
}

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBridgeInitializeRequestsReadPermissions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/permissions" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			Read []Metric `json:"read"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Read) != len(ReadCapabilities) {
			t.Fatalf("expected %d read capabilities, got %d", len(ReadCapabilities), len(req.Read))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	bridge := NewBridge(server.URL)
	if err := bridge.Initialize(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBridgeInitializeFailsOnDenial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"user denied"}`))
	}))
	defer server.Close()

	bridge := NewBridge(server.URL)
	if err := bridge.Initialize(context.Background()); err == nil {
		t.Fatal("expected error on denied permissions")
	}
}

func TestBridgeQueryParsesSamples(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/samples/sleep" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != from.Format(time.RFC3339) {
			t.Fatalf("unexpected start: %q", got)
		}
		if got := r.URL.Query().Get("end"); got != to.Format(time.RFC3339) {
			t.Fatalf("unexpected end: %q", got)
		}

		_, _ = w.Write([]byte(`[
			{"startDate":"2024-02-29T23:10:00Z","endDate":"2024-02-29T23:40:00Z","state":"INBED"},
			{"startDate":"2024-02-29T23:40:00Z","endDate":"2024-03-01T06:40:00Z","state":"ASLEEP"}
		]`))
	}))
	defer server.Close()

	bridge := NewBridge(server.URL)
	samples, err := bridge.Query(context.Background(), MetricSleep, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].State != SleepInBed || samples[1].State != SleepAsleep {
		t.Fatalf("unexpected states: %+v", samples)
	}
	if samples[1].Duration() != 7*time.Hour {
		t.Fatalf("expected 7h asleep, got %v", samples[1].Duration())
	}
}

func TestBridgeQueryOmitsStartForUnboundedWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("start") {
			t.Fatalf("expected no start param, got %q", r.URL.Query().Get("start"))
		}
		_, _ = w.Write([]byte(`[{"value":74.26,"unit":"kg","startDate":"2024-02-27T08:00:00Z","endDate":"2024-02-27T08:00:00Z"}]`))
	}))
	defer server.Close()

	bridge := NewBridge(server.URL)
	samples, err := bridge.Query(context.Background(), MetricWeight, time.Time{}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 || samples[0].Value != 74.26 {
		t.Fatalf("unexpected samples: %+v", samples)
	}
}

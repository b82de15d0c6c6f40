package transmitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-companion-app/internal/domain/health"
	"health-companion-app/internal/infra/healthapi"
)

func record() health.DailyRecord {
	return health.DailyRecord{
		Date:              "2024-03-01",
		StepCount:         8500,
		SleepHours:        7.7,
		SleepQualityIndex: 90,
		WeightKg:          74.3,
		RestingHeartRate:  58,
		AverageHeartRate:  58,
		ActiveEnergyKcal:  411,
		Note:              "Automatisch von iOS App",
	}
}

func TestSubmitCreatesWhenDateMissing(t *testing.T) {
	var created bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/health/date/2024-03-01":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("null"))
		case r.Method == http.MethodPost && r.URL.Path == "/api/health":
			var entry healthapi.Entry
			if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if entry.Notizen != "Automatisch von iOS App" {
				t.Fatalf("unexpected note: %s", entry.Notizen)
			}
			created = true
			entry.ID = 1
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(entry)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	holder := healthapi.NewHolder(healthapi.NewClient(server.URL, "secret"))
	svc := NewService(holder, nil)

	if !svc.Submit(context.Background(), record()) {
		t.Fatal("expected submit to succeed")
	}
	if !created {
		t.Fatal("expected create request")
	}
}

func TestSubmitUpdatesWhenDateExists(t *testing.T) {
	var updated bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/health/date/2024-03-01":
			_ = json.NewEncoder(w).Encode(healthapi.Entry{ID: 42, Datum: "2024-03-01"})
		case r.Method == http.MethodPut && r.URL.Path == "/api/health/42":
			updated = true
			_ = json.NewEncoder(w).Encode(healthapi.Entry{ID: 42, Datum: "2024-03-01"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	holder := healthapi.NewHolder(healthapi.NewClient(server.URL, "secret"))
	svc := NewService(holder, nil)

	if !svc.Submit(context.Background(), record()) {
		t.Fatal("expected submit to succeed")
	}
	if !updated {
		t.Fatal("expected update request, date already present upstream")
	}
}

func TestSubmitReturnsFalseOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("null"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"database locked"}`))
	}))
	defer server.Close()

	holder := healthapi.NewHolder(healthapi.NewClient(server.URL, "secret"))
	svc := NewService(holder, nil)

	if svc.Submit(context.Background(), record()) {
		t.Fatal("expected submit to fail on 500")
	}
}

func TestSubmitReturnsFalseWithoutClient(t *testing.T) {
	svc := NewService(healthapi.NewHolder(nil), nil)
	if svc.Submit(context.Background(), record()) {
		t.Fatal("expected submit to fail without configured client")
	}
}

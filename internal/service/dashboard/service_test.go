package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"health-companion-app/internal/infra/healthapi"
)

func newBackend(t *testing.T, failStats bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/user/me":
			_ = json.NewEncoder(w).Encode(healthapi.UserInfo{Username: "demo"})
		case r.URL.Path == "/api/health":
			_ = json.NewEncoder(w).Encode([]healthapi.Entry{
				{ID: 1, Datum: "2024-02-28", Schritte: 6200},
				{ID: 2, Datum: "2024-03-01", Schritte: 8500},
			})
		case r.URL.Path == "/api/health/stats":
			if failStats {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail":"stats unavailable"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(healthapi.Stats{TotalEntries: 2, AvgSchritte: 7350})
		case strings.HasPrefix(r.URL.Path, "/api/health/chart/"):
			_ = json.NewEncoder(w).Encode(healthapi.ChartData{Labels: []string{"2024-03-01"}, Values: []float64{1}})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
}

func TestReloadBuildsSortedSnapshot(t *testing.T) {
	server := newBackend(t, false)
	defer server.Close()

	holder := healthapi.NewHolder(healthapi.NewClient(server.URL, "secret"))
	svc := NewService(holder, nil)

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Username != "demo" {
		t.Fatalf("expected username demo, got %q", snap.Username)
	}
	if len(snap.Entries) != 2 || snap.Entries[0].Datum != "2024-03-01" {
		t.Fatalf("expected newest entry first, got %+v", snap.Entries)
	}
	if snap.Stats.TotalEntries != 2 {
		t.Fatalf("unexpected stats: %+v", snap.Stats)
	}
	if len(snap.Charts) != 4 {
		t.Fatalf("expected 4 chart series, got %d", len(snap.Charts))
	}
	if snap.ReloadedAt.IsZero() {
		t.Fatal("expected reload timestamp")
	}
}

func TestReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	good := newBackend(t, false)
	holder := healthapi.NewHolder(healthapi.NewClient(good.URL, "secret"))
	svc := NewService(holder, nil)

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload: %v", err)
	}
	good.Close()

	bad := newBackend(t, true)
	defer bad.Close()
	holder.Swap(healthapi.NewClient(bad.URL, "secret"))

	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error when stats endpoint fails")
	}

	snap := svc.Snapshot()
	if len(snap.Entries) != 2 || snap.Stats.TotalEntries != 2 {
		t.Fatalf("expected previous snapshot preserved, got %+v", snap)
	}
}

func TestReloadWithoutClientFails(t *testing.T) {
	svc := NewService(healthapi.NewHolder(nil), nil)
	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected error without configured client")
	}
}

func TestNavigateClampsAtListBounds(t *testing.T) {
	server := newBackend(t, false)
	defer server.Close()

	holder := healthapi.NewHolder(healthapi.NewClient(server.URL, "secret"))
	svc := NewService(holder, nil)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// 初始位置 0 是最新记录，prev 越界。
	entry, moved := svc.Navigate(-1)
	if moved {
		t.Fatal("expected prev from head to be clamped")
	}
	if entry.Datum != "2024-03-01" {
		t.Fatalf("expected to stay on newest entry, got %s", entry.Datum)
	}

	entry, moved = svc.Navigate(1)
	if !moved || entry.Datum != "2024-02-28" {
		t.Fatalf("expected move to older entry, got moved=%v entry=%s", moved, entry.Datum)
	}

	if _, moved = svc.Navigate(1); moved {
		t.Fatal("expected next past tail to be clamped")
	}

	current, ok := svc.Current()
	if !ok || current.Datum != "2024-02-28" {
		t.Fatalf("unexpected current entry: ok=%v datum=%s", ok, current.Datum)
	}
}

func TestCurrentOnEmptySnapshot(t *testing.T) {
	svc := NewService(healthapi.NewHolder(nil), nil)
	if _, ok := svc.Current(); ok {
		t.Fatal("expected no current entry on empty snapshot")
	}
	if _, moved := svc.Navigate(1); moved {
		t.Fatal("expected navigation on empty snapshot to fail")
	}
}

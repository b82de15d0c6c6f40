package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMonitorStartsOnline(t *testing.T) {
	m := NewMonitor(func(ctx context.Context) error { return nil }, Config{}, nil)
	if !m.IsOnline() {
		t.Fatal("expected optimistic online initial state")
	}
}

func TestMonitorWarnsOnceWithinCooldown(t *testing.T) {
	var warnings []string
	m := NewMonitor(nil, Config{
		WarnCooldown: 10 * time.Second,
		OnWarning:    func(msg string) { warnings = append(warnings, msg) },
	}, nil)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	probeErr := errors.New("connection refused")
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), probeErr)

	if m.State() != StateOffline {
		t.Fatalf("expected offline state, got %s", m.State())
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning within cooldown, got %d", len(warnings))
	}

	// 冷却窗口过后允许再次告警。
	base = base.Add(11 * time.Second)
	m.handleResult(context.Background(), probeErr)
	if len(warnings) != 2 {
		t.Fatalf("expected second warning after cooldown, got %d", len(warnings))
	}
}

func TestMonitorReloadsOnceOnReconnect(t *testing.T) {
	var reloads int
	m := NewMonitor(nil, Config{
		OnReconnect: func(ctx context.Context) { reloads++ },
	}, nil)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	probeErr := errors.New("connection refused")
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), nil)
	m.handleResult(context.Background(), nil)

	if m.State() != StateOnline {
		t.Fatalf("expected online state, got %s", m.State())
	}
	if reloads != 1 {
		t.Fatalf("expected exactly one reload on the offline->online transition, got %d", reloads)
	}
}

func TestMonitorNotifiesSubscribersOnTransitionsOnly(t *testing.T) {
	m := NewMonitor(nil, Config{}, nil)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	ch := m.Subscribe()

	probeErr := errors.New("connection refused")
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), nil)

	var states []State
	for {
		select {
		case state := <-ch:
			states = append(states, state)
			continue
		default:
		}
		break
	}

	if len(states) != 2 || states[0] != StateOffline || states[1] != StateOnline {
		t.Fatalf("expected [offline online], got %v", states)
	}
}

func TestMonitorResetsCooldownAfterRecovery(t *testing.T) {
	var warnings int
	m := NewMonitor(nil, Config{
		WarnCooldown: time.Hour,
		OnWarning:    func(string) { warnings++ },
	}, nil)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	probeErr := errors.New("connection refused")
	m.handleResult(context.Background(), probeErr)
	m.handleResult(context.Background(), nil)

	// 恢复后紧接着的新一轮离线应当立即告警，不受上一轮冷却限制。
	base = base.Add(time.Second)
	m.handleResult(context.Background(), probeErr)

	if warnings != 2 {
		t.Fatalf("expected warning for each offline episode, got %d", warnings)
	}
}

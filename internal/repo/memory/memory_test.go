package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hamed0406/netprobe/internal/domain"
)

func row(name string, st domain.HealthState, at time.Time) *domain.ServiceHealth {
	return &domain.ServiceHealth{Name: name, Host: name + ".example", Status: st, LastChecked: at}
}

func TestMemoryStore_LatestPerService(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	for _, r := range []*domain.ServiceHealth{
		row("REDCap", domain.Healthy, t0),
		row("Internet", domain.Healthy, t0),
		row("REDCap", domain.Unhealthy, t0.Add(time.Minute)),
	} {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("want 2 services, got %d", len(latest))
	}
	// sorted by name
	if latest[0].Name != "Internet" || latest[1].Name != "REDCap" {
		t.Fatalf("unexpected order: %+v", latest)
	}
	if latest[1].Status != domain.Unhealthy {
		t.Fatalf("want newest REDCap row, got %+v", latest[1])
	}
}

func TestMemoryStore_HistoryNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = s.Append(ctx, row("REDCap", domain.Healthy, t0.Add(time.Duration(i)*time.Minute)))
		_ = s.Append(ctx, row("Internet", domain.Healthy, t0.Add(time.Duration(i)*time.Minute)))
	}

	got, err := s.History(ctx, "REDCap", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 rows, got %d", len(got))
	}
	for _, r := range got {
		if r.Name != "REDCap" {
			t.Fatalf("filter leaked %q", r.Name)
		}
	}
	if !got[0].LastChecked.Equal(t0.Add(4 * time.Minute)) {
		t.Fatalf("want newest first, got %s", got[0].LastChecked)
	}

	all, _ := s.History(ctx, "", 0)
	if len(all) != 10 {
		t.Fatalf("want all 10 rows, got %d", len(all))
	}
}

func TestMemoryStore_AppendCopiesRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := row("REDCap", domain.Healthy, time.Now().UTC())
	_ = s.Append(ctx, r)
	r.Status = domain.Unhealthy

	latest, _ := s.Latest(ctx)
	if latest[0].Status != domain.Healthy {
		t.Fatalf("store must not alias appended rows")
	}
}

func TestMemoryStore_Alerts(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec, err := s.Get(ctx, "REDCap")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, got %+v err=%v", rec, err)
	}

	if err := s.Set(ctx, "REDCap", false, time.Time{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	rec, _ = s.Get(ctx, "REDCap")
	if rec == nil || rec.LastState || rec.LastSentAt != nil {
		t.Fatalf("unexpected: %+v", rec)
	}

	now := time.Now()
	_ = s.Set(ctx, "REDCap", true, now)
	rec, _ = s.Get(ctx, "REDCap")
	if rec == nil || !rec.LastState || rec.LastSentAt == nil || !rec.LastSentAt.Equal(now) {
		t.Fatalf("unexpected2: %+v", rec)
	}
}

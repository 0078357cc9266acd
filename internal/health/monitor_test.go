package health

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/probe"
)

// fakeProber answers per host and counts calls.
type fakeProber struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	out   map[string]probe.OnlineResult
}

func (f *fakeProber) CheckOnline(_ context.Context, host string, port int, timeout time.Duration) probe.OnlineResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	r := f.out[host]
	r.Host, r.Port, r.TimeoutMS = host, port, timeout.Milliseconds()
	return r
}

func online() probe.OnlineResult {
	return probe.OnlineResult{
		Online: true,
		TCP:    probe.TCPResult{OK: true},
		TLS:    probe.TLSResult{OK: true, Authorized: true},
	}
}

func stubDNS(class string) func(context.Context, string) string {
	return func(context.Context, string) string { return class }
}

func TestDefaultServices(t *testing.T) {
	if got := DefaultServices(""); len(got) != 2 {
		t.Fatalf("want REDCap+Internet without endpoint, got %+v", got)
	}
	got := DefaultServices("https://cloud.appwrite.io/v1")
	if len(got) != 3 || got[0].Name != "Appwrite" || got[0].Host != "cloud.appwrite.io" {
		t.Fatalf("unexpected services: %+v", got)
	}
}

func TestMonitor_AllHealthy(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{
		"redcap.univ-lehavre.fr": online(),
		"www.google.com":         online(),
	}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), DefaultServices(""), Options{DNS: stubDNS("")})

	st := m.Check(context.Background())
	if st.Status != domain.Healthy {
		t.Fatalf("want healthy, got %+v", st)
	}
	if len(st.Services) != 2 {
		t.Fatalf("want 2 services, got %d", len(st.Services))
	}
	for _, s := range st.Services {
		if s.Status != domain.Healthy || s.LatencyMS == nil || s.LatencyAvgMS == nil {
			t.Fatalf("unexpected service row: %+v", s)
		}
		if s.Message != msgOnline {
			t.Fatalf("unexpected message %q", s.Message)
		}
	}
	if st.Uptime < 0 || st.Timestamp.IsZero() {
		t.Fatalf("uptime/timestamp not set: %+v", st)
	}
}

func TestMonitor_OfflineServiceIsUnhealthyWithDNSClass(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{
		"redcap.univ-lehavre.fr": {TCP: probe.TCPResult{Error: "TCP connection timeout"}, TLS: probe.TLSResult{Error: "TLS connection timeout"}},
		"www.google.com":         online(),
	}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), DefaultServices(""), Options{DNS: stubDNS(probe.DNSResolves)})

	st := m.Check(context.Background())
	if st.Status != domain.Unhealthy {
		t.Fatalf("want unhealthy overall, got %q", st.Status)
	}
	var redcap domain.ServiceHealth
	for _, s := range st.Services {
		if s.Name == "REDCap" {
			redcap = s
		}
	}
	if redcap.Status != domain.Unhealthy {
		t.Fatalf("want REDCap unhealthy, got %+v", redcap)
	}
	if redcap.Message != "TCP connection timeout dns=RESOLVES" {
		t.Fatalf("unexpected message %q", redcap.Message)
	}
	if redcap.LatencyMS != nil {
		t.Fatalf("latency must be absent for unhealthy services")
	}
}

func TestMonitor_UnauthorizedTLSMessage(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{
		"www.google.com": {TCP: probe.TCPResult{OK: true}, TLS: probe.TLSResult{OK: true, Authorized: false}},
	}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), []Service{{Name: "Internet", Host: "www.google.com"}}, Options{DNS: stubDNS("")})

	st := m.Check(context.Background())
	if st.Services[0].Status != domain.Unhealthy || !strings.HasPrefix(st.Services[0].Message, msgUnauthorized) {
		t.Fatalf("unexpected row: %+v", st.Services[0])
	}
}

func TestMonitor_SlowServiceIsDegraded(t *testing.T) {
	fp := &fakeProber{
		delay: 20 * time.Millisecond,
		out:   map[string]probe.OnlineResult{"www.google.com": online()},
	}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), []Service{{Name: "Internet", Host: "www.google.com"}}, Options{
		DegradedLatency: time.Millisecond,
		DNS:             stubDNS(""),
	})

	st := m.Check(context.Background())
	if st.Status != domain.Degraded || st.Services[0].Status != domain.Degraded {
		t.Fatalf("want degraded, got %+v", st)
	}
}

func TestMonitor_SkipsHostsOutsideAllowlist(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{}}
	services := []Service{{Name: "Internal", Host: "10.0.0.5"}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), services, Options{DNS: stubDNS("")})

	st := m.Check(context.Background())
	if len(st.Services) != 0 || fp.calls != 0 {
		t.Fatalf("disallowed host was probed: %+v calls=%d", st, fp.calls)
	}
	if st.Status != domain.Healthy {
		t.Fatalf("no services means healthy, got %q", st.Status)
	}
}

func TestMonitor_LatencyAverageTracksRuns(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{"www.google.com": online()}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), []Service{{Name: "Internet", Host: "www.google.com"}}, Options{DNS: stubDNS("")})

	if got := m.observe("Internet", 100); got != 100 {
		t.Fatalf("first sample should seed the average, got %v", got)
	}
	got := m.observe("Internet", 200)
	if got <= 100 || got >= 200 {
		t.Fatalf("average should move toward the new sample, got %v", got)
	}
}

func TestMonitor_SnapshotReusesFreshStatus(t *testing.T) {
	fp := &fakeProber{out: map[string]probe.OnlineResult{"www.google.com": online()}}
	m := NewMonitor(fp, probe.NewAllowlist(nil, ""), []Service{{Name: "Internet", Host: "www.google.com"}}, Options{DNS: stubDNS("")})

	m.Snapshot(context.Background(), time.Minute)
	m.Snapshot(context.Background(), time.Minute)
	if fp.calls != 1 {
		t.Fatalf("want one probe for two fresh snapshots, got %d", fp.calls)
	}
	m.Snapshot(context.Background(), 0)
	if fp.calls != 2 {
		t.Fatalf("maxAge=0 should force a new check, got %d calls", fp.calls)
	}
}

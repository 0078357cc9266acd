package health

import (
	"context"
	"sync"
	"time"

	"github.com/VividCortex/ewma"
	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/probe"
)

const (
	msgOnline        = "Service is online and responding"
	msgSlow          = "Service is online but slow"
	msgNotResponding = "Service is not responding"
	msgUnauthorized  = "TLS certificate not authorized"
)

// Service is a named upstream checked on probe.AllowedPort.
type Service struct {
	Name string
	Host string
}

// DefaultServices mirrors the upstreams this backend depends on. The
// Appwrite entry is present only when endpointURL carries a hostname.
func DefaultServices(endpointURL string) []Service {
	var out []Service
	if h, ok := probe.ConfiguredHostname(endpointURL); ok {
		out = append(out, Service{Name: "Appwrite", Host: h})
	}
	return append(out,
		Service{Name: "REDCap", Host: "redcap.univ-lehavre.fr"},
		Service{Name: "Internet", Host: "www.google.com"},
	)
}

type Options struct {
	Timeout         time.Duration // per probe; defaults to 3s
	DegradedLatency time.Duration // 0 disables the degraded state
	Logger          *zap.Logger
	// DNS classifies an unreachable host; defaults to probe.CheckDNS.
	DNS func(ctx context.Context, host string) string
}

// Monitor aggregates online checks of several services into one status.
// It keeps a moving average of each service's latency across runs.
type Monitor struct {
	prober   probe.OnlineChecker
	allow    *probe.Allowlist
	services []Service
	timeout  time.Duration
	degraded time.Duration
	dns      func(ctx context.Context, host string) string
	logger   *zap.Logger
	started  time.Time

	mu   sync.Mutex
	avgs map[string]ewma.MovingAverage
	last *domain.HealthStatus
}

func NewMonitor(p probe.OnlineChecker, allow *probe.Allowlist, services []Service, opts Options) *Monitor {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DNS == nil {
		opts.DNS = func(ctx context.Context, host string) string {
			return probe.CheckDNS(ctx, host).Class
		}
	}
	return &Monitor{
		prober:   p,
		allow:    allow,
		services: services,
		timeout:  opts.Timeout,
		degraded: opts.DegradedLatency,
		dns:      opts.DNS,
		logger:   opts.Logger,
		started:  time.Now(),
		avgs:     make(map[string]ewma.MovingAverage),
	}
}

// Services returns the configured services whose host passes the allowlist.
func (m *Monitor) Services() []Service {
	out := make([]Service, 0, len(m.services))
	for _, s := range m.services {
		if m.allow.Allowed(s.Host) {
			out = append(out, s)
		}
	}
	return out
}

// Check probes every allowed service concurrently and folds the verdicts.
func (m *Monitor) Check(ctx context.Context) domain.HealthStatus {
	services := m.Services()
	results := make([]domain.ServiceHealth, len(services))

	var wg sync.WaitGroup
	for i, s := range services {
		wg.Add(1)
		go func(i int, s Service) {
			defer wg.Done()
			results[i] = m.checkService(ctx, s)
		}(i, s)
	}
	wg.Wait()

	st := domain.HealthStatus{
		Status:    domain.Overall(results),
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(m.started).Seconds(),
		Services:  results,
	}

	m.mu.Lock()
	m.last = &st
	m.mu.Unlock()

	m.logger.Info("health_status",
		zap.String("status", string(st.Status)),
		zap.Int("services", len(results)),
	)
	return st
}

// Snapshot returns the last status when it is younger than maxAge and runs
// a fresh Check otherwise.
func (m *Monitor) Snapshot(ctx context.Context, maxAge time.Duration) domain.HealthStatus {
	m.mu.Lock()
	last := m.last
	m.mu.Unlock()
	if last != nil && time.Since(last.Timestamp) < maxAge {
		return *last
	}
	return m.Check(ctx)
}

func (m *Monitor) checkService(ctx context.Context, s Service) domain.ServiceHealth {
	start := time.Now()
	res := m.prober.CheckOnline(ctx, s.Host, probe.AllowedPort, m.timeout)
	elapsed := time.Since(start)

	h := domain.ServiceHealth{
		Name:        s.Name,
		Host:        s.Host,
		LastChecked: time.Now().UTC(),
	}

	if res.Online {
		ms := elapsed.Milliseconds()
		avg := m.observe(s.Name, float64(ms))
		h.LatencyMS = &ms
		h.LatencyAvgMS = &avg
		if m.degraded > 0 && elapsed > m.degraded {
			h.Status = domain.Degraded
			h.Message = msgSlow
		} else {
			h.Status = domain.Healthy
			h.Message = msgOnline
		}
		return h
	}

	h.Status = domain.Unhealthy
	h.Message = failureMessage(res)

	dctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if class := m.dns(dctx, s.Host); class != "" {
		h.Message += " dns=" + class
	}

	m.logger.Warn("service_unhealthy",
		zap.String("service", s.Name),
		zap.String("host", s.Host),
		zap.String("message", h.Message),
	)
	return h
}

func failureMessage(res probe.OnlineResult) string {
	switch {
	case res.TCP.Error != "":
		return res.TCP.Error
	case res.TLS.Error != "":
		return res.TLS.Error
	case res.TLS.OK && !res.TLS.Authorized:
		return msgUnauthorized
	}
	return msgNotResponding
}

func (m *Monitor) observe(name string, ms float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	avg, ok := m.avgs[name]
	if !ok {
		avg = ewma.NewMovingAverage()
		m.avgs[name] = avg
	}
	avg.Add(ms)
	return avg.Value()
}

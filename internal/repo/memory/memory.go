package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/repo"
)

// maxRows bounds the in-process history; oldest rows are dropped first.
const maxRows = 10_000

type Store struct {
	mu     sync.RWMutex
	rows   []domain.ServiceHealth
	alerts map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		rows:   make([]domain.ServiceHealth, 0, 128),
		alerts: make(map[string]repo.AlertRecord),
	}
}

// ---- HealthStore ----

func (m *Store) Append(ctx context.Context, h *domain.ServiceHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *h
	if row.LastChecked.IsZero() {
		row.LastChecked = time.Now().UTC()
	}
	m.rows = append(m.rows, row)
	if len(m.rows) > maxRows {
		m.rows = append(m.rows[:0:0], m.rows[len(m.rows)-maxRows:]...)
	}
	return nil
}

func (m *Store) Latest(ctx context.Context) ([]domain.ServiceHealth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]domain.ServiceHealth)
	for _, r := range m.rows {
		cur, ok := latest[r.Name]
		if !ok || !r.LastChecked.Before(cur.LastChecked) {
			latest[r.Name] = r
		}
	}
	out := make([]domain.ServiceHealth, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) History(ctx context.Context, service string, limit int) ([]domain.ServiceHealth, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ServiceHealth, 0)
	for i := len(m.rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if service != "" && m.rows[i].Name != service {
			continue
		}
		out = append(out, m.rows[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastChecked.After(out[j].LastChecked) })
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, service string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[service]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, service string, lastState bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.alerts[service] = repo.AlertRecord{Service: service, LastState: lastState, LastSentAt: ts}
	return nil
}

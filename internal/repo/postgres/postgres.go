package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/domain"
	"github.com/hamed0406/netprobe/internal/repo"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ repo.HealthStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New connects, pings and applies pending migrations.
func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool, log: log}
	if err := s.migrate(); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	// Separate database/sql handle: the migrate driver closes it when done.
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	drv, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, _ := m.Version()
	s.log.Info("db_migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// ---- HealthStore ----

func (s *Store) Append(ctx context.Context, h *domain.ServiceHealth) error {
	if h.LastChecked.IsZero() {
		h.LastChecked = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO service_health
		   (service, host, status, message, latency_ms, latency_avg_ms, checked_at)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7)`,
		h.Name, h.Host, string(h.Status), h.Message, h.LatencyMS, h.LatencyAvgMS, h.LastChecked,
	)
	if err != nil {
		return fmt.Errorf("insert health: %w", err)
	}
	return nil
}

const healthColumns = `service, host, status, message, latency_ms, latency_avg_ms, checked_at`

func (s *Store) Latest(ctx context.Context) ([]domain.ServiceHealth, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT ON (service) `+healthColumns+`
  FROM service_health
 ORDER BY service, checked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	defer rows.Close()
	return scanHealth(rows)
}

func (s *Store) History(ctx context.Context, service string, limit int) ([]domain.ServiceHealth, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+healthColumns+`
  FROM service_health
 WHERE ($1 = '' OR service = $1)
 ORDER BY checked_at DESC, id DESC
 LIMIT NULLIF($2::int, 0)`, service, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()
	return scanHealth(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanHealth(rows rowScanner) ([]domain.ServiceHealth, error) {
	out := make([]domain.ServiceHealth, 0)
	for rows.Next() {
		var (
			h      domain.ServiceHealth
			status string
		)
		if err := rows.Scan(&h.Name, &h.Host, &status, &h.Message, &h.LatencyMS, &h.LatencyAvgMS, &h.LastChecked); err != nil {
			return nil, fmt.Errorf("scan health: %w", err)
		}
		h.Status = domain.HealthState(status)
		out = append(out, h)
	}
	return out, rows.Err()
}

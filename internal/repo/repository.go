package repo

import (
	"context"

	"github.com/hamed0406/netprobe/internal/domain"
)

// Ports (interfaces); memory and postgres implement both.
type HealthStore interface {
	Append(ctx context.Context, h *domain.ServiceHealth) error
	// Latest returns the newest row per service.
	Latest(ctx context.Context) ([]domain.ServiceHealth, error)
	// History returns rows newest first; an empty service means all services.
	History(ctx context.Context, service string, limit int) ([]domain.ServiceHealth, error)
}

package repository

import (
	"context"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/google/uuid"
)

// RunRepository persists completed simulation runs.
type RunRepository interface {
	SaveRun(ctx context.Context, run *domain.SimulationRun) error
	// GetRun returns domain.ErrRunNotFound when no run has the given id.
	GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error)
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.RunListItem, error)
}

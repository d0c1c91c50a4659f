package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const defaultListLimit = 50

type runRepository struct {
	db *DB
}

// NewRunRepository stores runs in the simulation_runs table.
func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{db: db}
}

// runRow mirrors the simulation_runs table.
type runRow struct {
	ID              uuid.UUID       `db:"id"`
	Status          string          `db:"status"`
	TotalPeriods    int             `db:"total_periods"`
	ReviewPeriod    int             `db:"review_period"`
	ServiceLevel    float64         `db:"service_level"`
	QuantilePolicy  string          `db:"quantile_policy"`
	Seed            int64           `db:"seed"`
	SafetyStock     float64         `db:"safety_stock"`
	Distribution    pq.Float64Array `db:"distribution"`
	InventoryLevels pq.Float64Array `db:"inventory_levels"`
	OrderQuantities pq.Float64Array `db:"order_quantities"`
	Demands         pq.Float64Array `db:"demands"`
	LostSales       pq.Float64Array `db:"lost_sales"`
	Source          string          `db:"source"`
	ErrorMessage    string          `db:"error_message"`
	DurationMS      int64           `db:"duration_ms"`
	CreatedAt       time.Time       `db:"created_at"`
}

func toRow(run *domain.SimulationRun) runRow {
	return runRow{
		ID:              run.ID,
		Status:          string(run.Status),
		TotalPeriods:    run.Params.TotalPeriods,
		ReviewPeriod:    run.Params.ReviewPeriod,
		ServiceLevel:    run.Params.ServiceLevel,
		QuantilePolicy:  string(run.Params.Policy()),
		Seed:            int64(run.Params.Seed),
		SafetyStock:     run.SafetyStock,
		Distribution:    floatArray(run.Distribution),
		InventoryLevels: floatArray(run.Trajectories.InventoryLevels),
		OrderQuantities: floatArray(run.Trajectories.OrderQuantities),
		Demands:         floatArray(run.Trajectories.Demands),
		LostSales:       floatArray(run.Trajectories.LostSales),
		Source:          run.Source,
		ErrorMessage:    run.Error,
		DurationMS:      run.Duration.Milliseconds(),
		CreatedAt:       run.CreatedAt,
	}
}

// floatArray keeps the array columns non-null for failed runs without results.
func floatArray(values []float64) pq.Float64Array {
	if values == nil {
		return pq.Float64Array{}
	}
	return pq.Float64Array(values)
}

func (r runRow) toDomain() *domain.SimulationRun {
	return &domain.SimulationRun{
		ID:     r.ID,
		Status: domain.RunStatus(r.Status),
		Params: domain.SimulationParams{
			TotalPeriods:   r.TotalPeriods,
			ReviewPeriod:   r.ReviewPeriod,
			ServiceLevel:   r.ServiceLevel,
			Seed:           uint64(r.Seed),
			QuantilePolicy: domain.QuantilePolicy(r.QuantilePolicy),
		},
		SafetyStock:  r.SafetyStock,
		Distribution: []float64(r.Distribution),
		Trajectories: domain.Trajectories{
			InventoryLevels: []float64(r.InventoryLevels),
			OrderQuantities: []float64(r.OrderQuantities),
			Demands:         []float64(r.Demands),
			LostSales:       []float64(r.LostSales),
		},
		Source:    r.Source,
		Error:     r.ErrorMessage,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
		CreatedAt: r.CreatedAt,
	}
}

// SaveRun inserts a run, replacing any existing row with the same id.
func (r *runRepository) SaveRun(ctx context.Context, run *domain.SimulationRun) error {
	row := toRow(run)

	query := `
		INSERT INTO simulation_runs (
			id, status, total_periods, review_period, service_level, quantile_policy,
			seed, safety_stock, distribution, inventory_levels, order_quantities,
			demands, lost_sales, source, error_message, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			safety_stock = EXCLUDED.safety_stock,
			distribution = EXCLUDED.distribution,
			inventory_levels = EXCLUDED.inventory_levels,
			order_quantities = EXCLUDED.order_quantities,
			demands = EXCLUDED.demands,
			lost_sales = EXCLUDED.lost_sales,
			error_message = EXCLUDED.error_message,
			duration_ms = EXCLUDED.duration_ms
	`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			row.ID, row.Status, row.TotalPeriods, row.ReviewPeriod, row.ServiceLevel, row.QuantilePolicy,
			row.Seed, row.SafetyStock, row.Distribution, row.InventoryLevels, row.OrderQuantities,
			row.Demands, row.LostSales, row.Source, row.ErrorMessage, row.DurationMS, row.CreatedAt,
		)
		if err != nil {
			return errors.Wrapf(err, "error saving simulation run %s", run.ID)
		}
		return nil
	})
}

func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error) {
	query := `
		SELECT id, status, total_periods, review_period, service_level, quantile_policy,
		       seed, safety_stock, distribution, inventory_levels, order_quantities,
		       demands, lost_sales, source, error_message, duration_ms, created_at
		FROM simulation_runs
		WHERE id = $1
	`

	var row runRow
	err := sqlx.GetContext(ctx, r.db, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrRunNotFound, "run %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error getting simulation run %s", id)
	}

	return row.toDomain(), nil
}

func (r *runRepository) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.RunListItem, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, status, total_periods, review_period, service_level,
		       safety_stock, source, created_at
		FROM simulation_runs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	items := make([]domain.RunListItem, 0)
	if err := sqlx.SelectContext(ctx, r.db, &items, query, string(filter.Status), limit); err != nil {
		return nil, errors.Wrap(err, "error listing simulation runs")
	}

	return items, nil
}

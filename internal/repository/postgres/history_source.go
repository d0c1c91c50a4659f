package postgres

import (
	"context"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// HistorySource loads the historical input for one SKU from the
// demand_forecasts, forecast_errors and lead_time_observations tables.
type HistorySource struct {
	pool *pgxpool.Pool
	sku  string
}

// NewHistorySource opens a pgx pool against databaseURL.
func NewHistorySource(ctx context.Context, databaseURL, sku string) (*HistorySource, error) {
	if databaseURL == "" {
		return nil, errors.New("history database url not set")
	}
	if sku == "" {
		return nil, errors.New("sku must be provided")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create history pool")
	}

	return &HistorySource{pool: pool, sku: sku}, nil
}

func (s *HistorySource) Name() string {
	return "postgres:" + s.sku
}

// Close closes the underlying pool.
func (s *HistorySource) Close() {
	s.pool.Close()
}

func (s *HistorySource) Load(ctx context.Context) (domain.HistoricalInput, error) {
	var input domain.HistoricalInput

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		input.Forecast, err = queryColumn[float64](gctx, s.pool,
			`SELECT forecast FROM demand_forecasts WHERE sku = $1 ORDER BY period`, s.sku)
		return err
	})
	g.Go(func() error {
		var err error
		input.Errors, err = queryColumn[float64](gctx, s.pool,
			`SELECT error FROM forecast_errors WHERE sku = $1 ORDER BY id`, s.sku)
		return err
	})
	g.Go(func() error {
		var err error
		input.LeadTimes, err = queryColumn[int](gctx, s.pool,
			`SELECT lead_time FROM lead_time_observations WHERE sku = $1 ORDER BY observed_at`, s.sku)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.HistoricalInput{}, err
	}
	return input, nil
}

func queryColumn[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "history query failed")
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[T])
	if err != nil {
		return nil, errors.Wrap(err, "history scan failed")
	}
	return values, nil
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
)

// SeedHistory writes one SKU's historical input into the history tables read by
// HistorySource. With replace set, existing rows for the SKU are removed first.
func SeedHistory(ctx context.Context, db *sql.DB, sku string, input domain.HistoricalInput, replace bool) error {
	if sku == "" {
		return errors.New("sku must be provided")
	}
	if err := input.Validate(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if replace {
		for _, table := range []string{"demand_forecasts", "forecast_errors", "lead_time_observations"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE sku = $1", sku); err != nil {
				return errors.Wrapf(err, "failed to clear %s", table)
			}
		}
	}

	for period, forecast := range input.Forecast {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO demand_forecasts (sku, period, forecast) VALUES ($1, $2, $3)
			ON CONFLICT (sku, period) DO UPDATE SET forecast = EXCLUDED.forecast`,
			sku, period, forecast); err != nil {
			return errors.Wrapf(err, "failed to insert forecast for period %d", period)
		}
	}

	for _, e := range input.Errors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO forecast_errors (sku, error) VALUES ($1, $2)`, sku, e); err != nil {
			return errors.Wrap(err, "failed to insert forecast error")
		}
	}

	// observed_at preserves insertion order, which HistorySource reads back by.
	for i, lt := range input.LeadTimes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lead_time_observations (sku, lead_time, observed_at)
			VALUES ($1, $2, NOW() + make_interval(secs => $3))`,
			sku, lt, i); err != nil {
			return errors.Wrap(err, "failed to insert lead time observation")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

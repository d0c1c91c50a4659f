package dataset

import (
	"context"
	"io"
	"os"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Source loads the historical forecast, error and lead-time samples.
type Source interface {
	// Name identifies the source in logs and persisted runs.
	Name() string
	Load(ctx context.Context) (domain.HistoricalInput, error)
}

type opener func(ctx context.Context) (io.ReadCloser, error)

// loadColumns reads the three columns concurrently.
func loadColumns(ctx context.Context, forecast, errorsCol, leadTime opener) (domain.HistoricalInput, error) {
	var (
		input   domain.HistoricalInput
		leadRaw []float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readInto(gctx, forecast, ColumnForecast, &input.Forecast) })
	g.Go(func() error { return readInto(gctx, errorsCol, ColumnErrors, &input.Errors) })
	g.Go(func() error { return readInto(gctx, leadTime, ColumnLeadTime, &leadRaw) })

	if err := g.Wait(); err != nil {
		return domain.HistoricalInput{}, err
	}

	lt, err := LeadTimes(leadRaw)
	if err != nil {
		return domain.HistoricalInput{}, err
	}
	input.LeadTimes = lt

	return input, nil
}

func readInto(ctx context.Context, open opener, column string, dst *[]float64) error {
	rc, err := open(ctx)
	if err != nil {
		return errors.Wrapf(err, "open %s data", column)
	}
	defer rc.Close()

	values, err := ReadColumn(rc, column)
	if err != nil {
		return errors.Wrapf(err, "read %s data", column)
	}
	*dst = values
	return nil
}

// CSVSource reads the three inputs from local CSV files.
type CSVSource struct {
	ForecastPath string
	ErrorsPath   string
	LeadTimePath string
}

// NewCSVSource creates a source over local CSV files.
func NewCSVSource(forecastPath, errorsPath, leadTimePath string) *CSVSource {
	return &CSVSource{
		ForecastPath: forecastPath,
		ErrorsPath:   errorsPath,
		LeadTimePath: leadTimePath,
	}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.ForecastPath
}

func (s *CSVSource) Load(ctx context.Context) (domain.HistoricalInput, error) {
	return loadColumns(ctx, openFile(s.ForecastPath), openFile(s.ErrorsPath), openFile(s.LeadTimePath))
}

func openFile(path string) opener {
	return func(context.Context) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		return f, nil
	}
}

// StaticSource serves an in-memory input, e.g. one posted inline to the API.
type StaticSource struct {
	Input domain.HistoricalInput
}

func (s StaticSource) Name() string {
	return "inline"
}

func (s StaticSource) Load(ctx context.Context) (domain.HistoricalInput, error) {
	if err := ctx.Err(); err != nil {
		return domain.HistoricalInput{}, err
	}
	return s.Input, nil
}

package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/pkg/errors"
)

// Column names expected in the historical input files.
const (
	ColumnForecast = "forecast"
	ColumnErrors   = "errors"
	ColumnLeadTime = "lead_time"
)

// ReadColumn reads the named numeric column from CSV data with a header row.
// Blank cells are skipped; any other unparsable cell is an error.
func ReadColumn(r io.Reader, column string) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrapf(domain.ErrInsufficientData, "csv has no header, expected column %q", column)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	idx := columnIndex(header, column)
	if idx < 0 {
		return nil, errors.Wrapf(domain.ErrInsufficientData, "column %q not found in header %v", column, header)
	}

	var values []float64
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read csv row %d", line)
		}
		if idx >= len(record) {
			continue
		}

		cell := strings.TrimSpace(record[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("row %d: invalid %s value %q", line, column, cell)
		}
		values = append(values, v)
	}

	return values, nil
}

// LeadTimes converts a numeric column to whole-period lead times.
func LeadTimes(values []float64) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) {
			return nil, errors.Errorf("lead time %v at position %d is not a whole number of periods", v, i)
		}
		out[i] = int(v)
	}
	return out, nil
}

func columnIndex(header []string, column string) int {
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}

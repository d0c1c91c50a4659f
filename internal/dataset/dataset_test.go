package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/storage"
)

func TestReadColumn(t *testing.T) {
	data := "period,forecast,note\n0,12.5,a\n1, 10 ,b\n2,,skipped\n3,8,c\n"

	values, err := ReadColumn(strings.NewReader(data), ColumnForecast)
	if err != nil {
		t.Fatalf("Expected read to succeed: %v", err)
	}
	want := []float64{12.5, 10, 8}
	if len(values) != len(want) {
		t.Fatalf("Expected %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, values)
		}
	}
}

func TestReadColumn_HeaderIsCaseInsensitiveAndBOMTolerant(t *testing.T) {
	data := "\ufeffErrors\n-1\n2\n"

	values, err := ReadColumn(strings.NewReader(data), ColumnErrors)
	if err != nil {
		t.Fatalf("Expected read to succeed: %v", err)
	}
	if len(values) != 2 || values[0] != -1 || values[1] != 2 {
		t.Errorf("Expected [-1 2], got %v", values)
	}
}

func TestReadColumn_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		wantData bool
	}{
		{"missing column", "foo,bar\n1,2\n", true},
		{"empty input", "", true},
		{"bad value", "forecast\n1\nabc\n", false},
		{"NaN value", "forecast\nNaN\n", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadColumn(strings.NewReader(tc.data), ColumnForecast)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if got := errors.Is(err, domain.ErrInsufficientData); got != tc.wantData {
				t.Errorf("errors.Is(ErrInsufficientData) = %v, want %v (%v)", got, tc.wantData, err)
			}
		})
	}
}

func TestLeadTimes(t *testing.T) {
	lt, err := LeadTimes([]float64{3, 1, 4.0})
	if err != nil {
		t.Fatalf("Expected conversion to succeed: %v", err)
	}
	if len(lt) != 3 || lt[0] != 3 || lt[1] != 1 || lt[2] != 4 {
		t.Errorf("Expected [3 1 4], got %v", lt)
	}

	if _, err := LeadTimes([]float64{2.5}); err == nil {
		t.Error("Expected error for fractional lead time")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestCSVSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(
		writeFile(t, dir, "forecast_data.csv", "forecast\n10\n12\n11\n"),
		writeFile(t, dir, "errors_data.csv", "errors\n-1\n0\n2\n"),
		writeFile(t, dir, "lead_time_data.csv", "lead_time\n2\n3\n"),
	)

	input, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected load to succeed: %v", err)
	}
	if len(input.Forecast) != 3 || len(input.Errors) != 3 || len(input.LeadTimes) != 2 {
		t.Errorf("Unexpected input sizes: %+v", input)
	}
	if input.LeadTimes[1] != 3 {
		t.Errorf("Expected second lead time 3, got %d", input.LeadTimes[1])
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(
		writeFile(t, dir, "forecast_data.csv", "forecast\n10\n"),
		filepath.Join(dir, "missing.csv"),
		writeFile(t, dir, "lead_time_data.csv", "lead_time\n2\n"),
	)

	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("Expected error for missing errors file")
	}
}

type memoryStorage struct {
	objects map[string][]byte
}

var _ storage.ObjectStorage = (*memoryStorage)(nil)

func (m *memoryStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

func TestObjectSource_Load(t *testing.T) {
	store := &memoryStorage{objects: map[string][]byte{
		"sku-42/forecast_data.csv":  []byte("forecast\n7\n8\n"),
		"sku-42/errors_data.csv":    []byte("errors\n0\n"),
		"sku-42/lead_time_data.csv": []byte("lead_time\n1\n"),
	}}

	src := NewObjectSource(store, "sku-42", "forecast_data.csv", "errors_data.csv", "lead_time_data.csv")
	input, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected load to succeed: %v", err)
	}
	if len(input.Forecast) != 2 || input.Forecast[0] != 7 {
		t.Errorf("Unexpected forecast %v", input.Forecast)
	}
	if src.Name() != "object:sku-42/forecast_data.csv" {
		t.Errorf("Unexpected source name %s", src.Name())
	}
}

func TestStaticSource_Load(t *testing.T) {
	in := domain.HistoricalInput{Forecast: []float64{1}, Errors: []float64{0}, LeadTimes: []int{1}}

	got, err := StaticSource{Input: in}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Forecast[0] != 1 {
		t.Errorf("Expected passthrough input, got %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (StaticSource{Input: in}).Load(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/andresuchdata/skusim/internal/cache"
	"github.com/andresuchdata/skusim/internal/dataset"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type memoryRepository struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*domain.SimulationRun
	saveErr error
	gets    int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{runs: make(map[uuid.UUID]*domain.SimulationRun)}
}

func (r *memoryRepository) SaveRun(ctx context.Context, run *domain.SimulationRun) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRepository) GetRun(ctx context.Context, id uuid.UUID) (*domain.SimulationRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	run, ok := r.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (r *memoryRepository) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.RunListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]domain.RunListItem, 0, len(r.runs))
	for _, run := range r.runs {
		items = append(items, domain.RunListItem{ID: run.ID, Status: run.Status, SafetyStock: run.SafetyStock})
	}
	return items, nil
}

func flatInput() *domain.HistoricalInput {
	return &domain.HistoricalInput{
		Forecast:  []float64{10, 10, 10, 10, 10},
		Errors:    []float64{0},
		LeadTimes: []int{1, 2, 3},
	}
}

func defaultParams() domain.SimulationParams {
	return domain.SimulationParams{TotalPeriods: 4, ReviewPeriod: 2, ServiceLevel: 0.5, Seed: 42}
}

func TestSimulationService_Run(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewSimulationService(nil, repo, cache.NewLocalRunCache(8, 0), m)

	run, err := svc.Run(ctx, RunRequest{Params: defaultParams(), Input: flatInput()})
	if err != nil {
		t.Fatalf("Expected run to succeed: %v", err)
	}

	if run.SafetyStock != 20 {
		t.Errorf("Expected safety stock 20, got %v", run.SafetyStock)
	}
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("Expected status %q, got %q", domain.RunStatusCompleted, run.Status)
	}
	if run.Source != "inline" {
		t.Errorf("Expected source inline, got %q", run.Source)
	}
	if run.Trajectories.Len() != 4 {
		t.Errorf("Expected 4 periods, got %d", run.Trajectories.Len())
	}
	if run.Summary.Count != 3 || run.Summary.Median != 20 {
		t.Errorf("Expected summary of 3 values with median 20, got %+v", run.Summary)
	}
	if _, ok := repo.runs[run.ID]; !ok {
		t.Error("Expected run to be persisted")
	}

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("Expected 1 completed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.SafetyStock); got != 20 {
		t.Errorf("Expected safety stock gauge 20, got %v", got)
	}
}

func TestSimulationService_RunAssignsSeed(t *testing.T) {
	svc := NewSimulationService(nil, nil, nil, nil)
	params := defaultParams()
	params.Seed = 0

	run, err := svc.Run(context.Background(), RunRequest{Params: params, Input: flatInput()})
	if err != nil {
		t.Fatalf("Expected run to succeed: %v", err)
	}
	if run.Params.Seed == 0 {
		t.Error("Expected a seed to be assigned and recorded")
	}
}

func TestSimulationService_RunUsesDefaultSource(t *testing.T) {
	src := dataset.StaticSource{Input: *flatInput()}
	svc := NewSimulationService(src, nil, nil, nil)

	run, err := svc.Run(context.Background(), RunRequest{Params: defaultParams()})
	if err != nil {
		t.Fatalf("Expected run to succeed: %v", err)
	}
	if run.SafetyStock != 20 {
		t.Errorf("Expected safety stock 20, got %v", run.SafetyStock)
	}
}

func TestSimulationService_RunErrors(t *testing.T) {
	short := flatInput()
	short.Forecast = []float64{10, 10}

	tests := []struct {
		name    string
		req     RunRequest
		want    error
		outcome string
	}{
		{
			name:    "invalid service level",
			req:     RunRequest{Params: domain.SimulationParams{TotalPeriods: 4, ReviewPeriod: 2, ServiceLevel: 1}, Input: flatInput()},
			want:    domain.ErrInvalidParameter,
			outcome: "invalid_parameter",
		},
		{
			name:    "no input",
			req:     RunRequest{Params: defaultParams()},
			want:    domain.ErrInsufficientData,
			outcome: "insufficient_data",
		},
		{
			name:    "forecast too short",
			req:     RunRequest{Params: defaultParams(), Input: short},
			want:    domain.ErrIndexOutOfRange,
			outcome: "index_out_of_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			svc := NewSimulationService(nil, nil, nil, m)

			run, err := svc.Run(context.Background(), tt.req)
			if run != nil {
				t.Errorf("Expected no run, got %+v", run)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if Outcome(err) != tt.outcome {
				t.Errorf("Expected outcome %q, got %q", tt.outcome, Outcome(err))
			}
			if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues(tt.outcome)); got != 1 {
				t.Errorf("Expected outcome counter 1, got %v", got)
			}
		})
	}
}

func TestSimulationService_RunPersistFailure(t *testing.T) {
	repo := newMemoryRepository()
	repo.saveErr = errors.New("connection refused")
	svc := NewSimulationService(nil, repo, nil, nil)

	if _, err := svc.Run(context.Background(), RunRequest{Params: defaultParams(), Input: flatInput()}); err == nil {
		t.Fatal("Expected persistence failure to be returned")
	}
}

func TestSimulationService_Get(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()
	m := metrics.New(prometheus.NewRegistry())
	runCache := cache.NewLocalRunCache(8, 0)
	svc := NewSimulationService(nil, repo, runCache, m)

	stored := &domain.SimulationRun{ID: uuid.New(), Status: domain.RunStatusCompleted, SafetyStock: 7}
	repo.runs[stored.ID] = stored

	got, err := svc.Get(ctx, stored.ID)
	if err != nil || got.ID != stored.ID {
		t.Fatalf("Expected stored run, got %v %v", got, err)
	}
	if _, err := svc.Get(ctx, stored.ID); err != nil {
		t.Fatalf("Expected cached run, got %v", err)
	}

	if repo.gets != 1 {
		t.Errorf("Expected repository to be read once, got %d", repo.gets)
	}
	if got := testutil.ToFloat64(m.CacheMisses); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheHits); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}

	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestSimulationService_ListWithoutRepository(t *testing.T) {
	svc := NewSimulationService(nil, nil, nil, nil)

	items, err := svc.List(context.Background(), domain.RunFilter{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty list, got %v", items)
	}
}

func TestSimulationService_RunRecordsFailedRun(t *testing.T) {
	short := flatInput()
	short.Forecast = []float64{10, 10}

	tests := []struct {
		name      string
		req       RunRequest
		saveErr   error
		want      error
		persisted int
	}{
		{
			name:      "forecast too short is recorded",
			req:       RunRequest{Params: defaultParams(), Input: short},
			want:      domain.ErrIndexOutOfRange,
			persisted: 1,
		},
		{
			name:      "save failure keeps run error",
			req:       RunRequest{Params: defaultParams(), Input: short},
			saveErr:   errors.New("connection refused"),
			want:      domain.ErrIndexOutOfRange,
			persisted: 0,
		},
		{
			name:      "invalid params are not recorded",
			req:       RunRequest{Params: domain.SimulationParams{TotalPeriods: 0, ReviewPeriod: 2, ServiceLevel: 0.5}, Input: flatInput()},
			want:      domain.ErrInvalidParameter,
			persisted: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			repo.saveErr = tt.saveErr
			svc := NewSimulationService(nil, repo, nil, nil)

			if _, err := svc.Run(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if len(repo.runs) != tt.persisted {
				t.Fatalf("Expected %d persisted runs, got %d", tt.persisted, len(repo.runs))
			}

			for _, run := range repo.runs {
				if run.Status != domain.RunStatusFailed {
					t.Errorf("Expected status %q, got %q", domain.RunStatusFailed, run.Status)
				}
				if run.Error == "" {
					t.Error("Expected the failure reason to be recorded")
				}
				if run.Params.Seed != 42 || run.Source != "inline" {
					t.Errorf("Expected params and source to be recorded, got %+v", run)
				}
			}
		})
	}
}

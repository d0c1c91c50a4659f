package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/andresuchdata/skusim/internal/cache"
	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/andresuchdata/skusim/internal/metrics"
	"github.com/andresuchdata/skusim/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	svc := service.NewSimulationService(nil, nil, cache.NewLocalRunCache(16, 0), metrics.New(reg))
	return NewRouter(&Services{
		Simulation: svc,
		Defaults:   domain.SimulationParams{TotalPeriods: 4, ReviewPeriod: 2, ServiceLevel: 0.5, Seed: 1},
		Gatherer:   reg,
	}, nil)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const inlineBody = `{"forecast":[10,10,10,10,10],"errors":[0],"lead_time":[1,2,3]}`

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("Expected ok body, got %s", w.Body.String())
	}
}

func TestCreateAndGetSimulation(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/simulations", inlineBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var run domain.SimulationRun
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("Failed to decode run: %v", err)
	}
	if run.SafetyStock != 20 {
		t.Errorf("Expected safety stock 20, got %v", run.SafetyStock)
	}
	if want := []float64{10, 30, 20, 30}; !reflect.DeepEqual(run.Trajectories.InventoryLevels, want) {
		t.Errorf("Expected inventory levels %v, got %v", want, run.Trajectories.InventoryLevels)
	}
	if want := []float64{30, 0, 20, 0}; !reflect.DeepEqual(run.Trajectories.OrderQuantities, want) {
		t.Errorf("Expected order quantities %v, got %v", want, run.Trajectories.OrderQuantities)
	}

	w = do(router, http.MethodGet, "/api/v1/simulations/"+run.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected cached run with status 200, got %d", w.Code)
	}

	w = do(router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `skusim_runs_total{outcome="completed"} 1`) {
		t.Errorf("Expected completed run in metrics, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateSimulation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		outcome string
	}{
		{"malformed json", `{"forecast":`, http.StatusBadRequest, ""},
		{"invalid service level", `{"service_level":1.5,"forecast":[10,10,10,10,10],"errors":[0],"lead_time":[1]}`, http.StatusBadRequest, "invalid_parameter"},
		{"no input configured", ``, http.StatusUnprocessableEntity, "insufficient_data"},
		{"missing errors", `{"forecast":[10,10,10,10,10],"lead_time":[1]}`, http.StatusUnprocessableEntity, "insufficient_data"},
		{"forecast too short", `{"forecast":[10,10],"errors":[0],"lead_time":[1]}`, http.StatusUnprocessableEntity, "index_out_of_range"},
		{"unknown policy", `{"quantile_policy":"median","forecast":[10,10,10,10,10],"errors":[0],"lead_time":[1]}`, http.StatusBadRequest, "invalid_parameter"},
	}

	router := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/simulations", tt.body)
			if w.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.outcome != "" && !strings.Contains(w.Body.String(), `"error":"`+tt.outcome+`"`) {
				t.Errorf("Expected error %q, got %s", tt.outcome, w.Body.String())
			}
		})
	}
}

func TestGetSimulation_NotFound(t *testing.T) {
	router := newTestRouter(t)

	if w := do(router, http.MethodGet, "/api/v1/simulations/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed id, got %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/api/v1/simulations/1b4e28ba-2fa1-11d2-883f-0016d3cca427", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown id, got %d", w.Code)
	}
}

func TestListSimulations(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/simulations?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Errorf("Expected empty listing, got %s", w.Body.String())
	}

	if w := do(router, http.MethodGet, "/api/v1/simulations?status=bogus", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown status, got %d", w.Code)
	}
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	if allowAll {
		t.Error("Expected allowAll to be false")
	}
	if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(origins, want) {
		t.Errorf("Expected %v, got %v", want, origins)
	}

	if _, allowAll := normalizeAllowedOrigins([]string{"*"}); !allowAll {
		t.Error("Expected * to allow all origins")
	}
}

package config

import (
	"errors"
	"testing"

	"github.com/andresuchdata/skusim/internal/domain"
	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Cache.Enabled || cfg.Database.Enabled || cfg.Storage.Enabled {
		t.Error("Expected cache, database and storage to be disabled by default")
	}

	params, err := cfg.Simulation.Params()
	if err != nil {
		t.Fatalf("Expected default simulation params to be valid: %v", err)
	}
	want := domain.SimulationParams{TotalPeriods: 10, ReviewPeriod: 2, ServiceLevel: 0.95, QuantilePolicy: domain.QuantileComplement}
	if params != want {
		t.Errorf("Expected %+v, got %+v", want, params)
	}
}

func TestSimulationConfig_ParamsValidates(t *testing.T) {
	tests := []struct {
		name string
		cfg  SimulationConfig
	}{
		{"zero periods", SimulationConfig{TotalPeriods: 0, ReviewPeriod: 1, ServiceLevel: 0.9}},
		{"zero review period", SimulationConfig{TotalPeriods: 5, ReviewPeriod: 0, ServiceLevel: 0.9}},
		{"service level of one", SimulationConfig{TotalPeriods: 5, ReviewPeriod: 1, ServiceLevel: 1}},
		{"unknown policy", SimulationConfig{TotalPeriods: 5, ReviewPeriod: 1, ServiceLevel: 0.9, QuantilePolicy: "lower"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Params(); !errors.Is(err, domain.ErrInvalidParameter) {
				t.Errorf("Expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestFromViper_ReadsHistoryFromEnv(t *testing.T) {
	t.Setenv("HISTORY_DATABASE_URL", "postgres://localhost:5432/history")
	t.Setenv("HISTORY_SKU", "SKU-42")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	cfg := fromViper(v)

	if cfg.Database.HistorySKU != "SKU-42" {
		t.Errorf("Expected history sku SKU-42, got %q", cfg.Database.HistorySKU)
	}
	if cfg.Database.HistoryURL != "postgres://localhost:5432/history" {
		t.Errorf("Expected history url from env, got %q", cfg.Database.HistoryURL)
	}
}

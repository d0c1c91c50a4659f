package domain

import "testing"

func TestParseRunStatus(t *testing.T) {
	tests := []struct {
		label string
		want  RunStatus
		ok    bool
	}{
		{"completed", RunStatusCompleted, true},
		{" Failed ", RunStatusFailed, true},
		{"running", RunStatus("running"), false},
	}

	for _, tt := range tests {
		got, ok := ParseRunStatus(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRunStatus(%q): expected %q %v, got %q %v", tt.label, tt.want, tt.ok, got, ok)
		}
	}
	if RunStatusLabel(RunStatusFailed) != "Failed" {
		t.Errorf("Expected label Failed, got %q", RunStatusLabel(RunStatusFailed))
	}
}

func TestRequiredForecastLength(t *testing.T) {
	tests := []struct {
		periods, review, want int
	}{
		{1, 1, 1},
		{5, 3, 7},
		{10, 2, 11},
	}

	for _, tt := range tests {
		if got := RequiredForecastLength(tt.periods, tt.review); got != tt.want {
			t.Errorf("RequiredForecastLength(%d, %d): expected %d, got %d", tt.periods, tt.review, tt.want, got)
		}
	}
}

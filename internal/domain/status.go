package domain

import "strings"

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

var runStatusLabels = map[RunStatus]string{
	RunStatusCompleted: "Completed",
	RunStatusFailed:    "Failed",
}

// RunStatusLabel returns a human-readable label for a run status.
func RunStatusLabel(status RunStatus) string {
	if label, ok := runStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParseRunStatus returns the status for a given label (case-insensitive).
func ParseRunStatus(label string) (RunStatus, bool) {
	status := RunStatus(strings.ToLower(strings.TrimSpace(label)))
	_, ok := runStatusLabels[status]

	return status, ok
}

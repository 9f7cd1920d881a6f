package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/docweave/internal/foundation/errors"
)

// Event type names.
const (
	TypeRunStarted     = "RunStarted"
	TypeStageCompleted = "StageCompleted"
	TypeRunCompleted   = "RunCompleted"
	TypeRunFailed      = "RunFailed"
)

// RunStartedMeta describes the inputs of a run.
type RunStartedMeta struct {
	Source   string `json:"source"`
	Kind     string `json:"kind,omitempty"`
	Template string `json:"template"`
	Model    string `json:"model"`
	DryRun   bool   `json:"dry_run"`
	Output   string `json:"output,omitempty"`
}

// RunCompletedMeta describes the result of a successful run.
type RunCompletedMeta struct {
	Destination  string `json:"destination,omitempty"`
	Bytes        int    `json:"bytes"`
	Truncated    bool   `json:"truncated"`
	Synthetic    bool   `json:"synthetic"`
	Attempts     int    `json:"attempts"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	DurationMS   int64  `json:"duration_ms"`
}

// RunFailedMeta records the failing stage and error.
type RunFailedMeta struct {
	Stage      string `json:"stage"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
}

// NewRunStarted creates a RunStarted event.
func NewRunStarted(runID string, meta RunStartedMeta) (*Event, error) {
	return newEvent(runID, TypeRunStarted, meta)
}

// NewStageCompleted creates a StageCompleted event.
func NewStageCompleted(runID, stage string, d time.Duration) (*Event, error) {
	return newEvent(runID, TypeStageCompleted, map[string]any{
		"stage":       stage,
		"duration_ms": d.Milliseconds(),
	})
}

// NewRunCompleted creates a RunCompleted event.
func NewRunCompleted(runID string, meta RunCompletedMeta) (*Event, error) {
	return newEvent(runID, TypeRunCompleted, meta)
}

// NewRunFailed creates a RunFailed event.
func NewRunFailed(runID string, meta RunFailedMeta) (*Event, error) {
	return newEvent(runID, TypeRunFailed, meta)
}

func newEvent(runID, eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.JournalError("failed to marshal "+eventType+" payload").
			WithCause(err).
			WithContext("run_id", runID).
			Build()
	}
	return &Event{RunID: runID, Type: eventType, Time: time.Now(), Payload: data}, nil
}

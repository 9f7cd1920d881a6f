package eventstore

import (
	"encoding/json"
	"sort"
	"time"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunSummary is a read model of one pipeline run.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Status      string        `json:"status"`
	Source      string        `json:"source"`
	Template    string        `json:"template"`
	Model       string        `json:"model"`
	DryRun      bool          `json:"dry_run"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Stages      []string      `json:"stages,omitempty"`
	Destination string        `json:"destination,omitempty"`
	Truncated   bool          `json:"truncated"`
	Attempts    int           `json:"attempts,omitempty"`
	ErrorStage  string        `json:"error_stage,omitempty"`
	ErrorKind   string        `json:"error_kind,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Summaries folds events into run summaries, newest run first. At most
// limit summaries are returned when limit > 0.
func Summaries(events []*Event, limit int) []*RunSummary {
	runs := map[string]*RunSummary{}
	for _, e := range events {
		apply(runs, e)
	}
	out := make([]*RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].RunID > out[j].RunID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func apply(runs map[string]*RunSummary, e *Event) {
	id := e.RunID
	if id == "" {
		return
	}
	s, ok := runs[id]
	if !ok {
		s = &RunSummary{RunID: id, Status: StatusRunning, StartedAt: e.Time}
		runs[id] = s
	}

	switch e.Type {
	case TypeRunStarted:
		var m RunStartedMeta
		if json.Unmarshal(e.Payload, &m) == nil {
			s.Source, s.Template, s.Model, s.DryRun = m.Source, m.Template, m.Model, m.DryRun
		}
		s.StartedAt = e.Time

	case TypeStageCompleted:
		var m struct {
			Stage string `json:"stage"`
		}
		if json.Unmarshal(e.Payload, &m) == nil && m.Stage != "" {
			s.Stages = append(s.Stages, m.Stage)
		}

	case TypeRunCompleted:
		finish(s, e.Time, StatusCompleted)
		var m RunCompletedMeta
		if json.Unmarshal(e.Payload, &m) == nil {
			s.Destination, s.Truncated, s.Attempts = m.Destination, m.Truncated, m.Attempts
		}

	case TypeRunFailed:
		finish(s, e.Time, StatusFailed)
		var m RunFailedMeta
		if json.Unmarshal(e.Payload, &m) == nil {
			s.ErrorStage, s.ErrorKind, s.Error = m.Stage, m.Kind, m.Error
		}
	}
}

func finish(s *RunSummary, at time.Time, status string) {
	s.CompletedAt = &at
	s.Duration = at.Sub(s.StartedAt)
	s.Status = status
}

package pipeline

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/docweave/internal/analysis"
	"git.home.luguber.info/inful/docweave/internal/config"
	ferrors "git.home.luguber.info/inful/docweave/internal/foundation/errors"
	"git.home.luguber.info/inful/docweave/internal/model"
	"git.home.luguber.info/inful/docweave/internal/prompt"
	"git.home.luguber.info/inful/docweave/internal/render"
)

// Stage names a pipeline step. The names double as metric and journal labels.
type Stage string

const (
	StageConfig  Stage = "config"
	StageFetch   Stage = "fetch"
	StageAnalyze Stage = "analyze"
	StagePrompt  Stage = "prompt"
	StageInvoke  Stage = "invoke"
	StageRender  Stage = "render"
	StageWrite   Stage = "write"
)

// StageError tags a failure with the stage that produced it. The stage-local
// error is reachable with errors.As and keeps its kind.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Category implements errors.Classifier by delegating to the stage error.
func (e *StageError) Category() ferrors.ErrorCategory { return ferrors.GetCategory(e.Err) }

// RetryStrategy implements errors.Classifier by delegating to the stage error.
func (e *StageError) RetryStrategy() ferrors.RetryStrategy { return ferrors.GetRetryStrategy(e.Err) }

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// errorKind extracts the stage-local kind for logs and the journal.
func errorKind(err error) string {
	var (
		cfgErr    *config.Error
		anaErr    *analysis.Error
		promptErr *prompt.Error
		modelErr  *model.Error
		renderErr *render.Error
	)
	switch {
	case errors.As(err, &cfgErr):
		return string(cfgErr.Kind)
	case errors.As(err, &anaErr):
		return string(anaErr.Kind)
	case errors.As(err, &promptErr):
		return string(promptErr.Kind)
	case errors.As(err, &modelErr):
		return string(modelErr.Kind)
	case errors.As(err, &renderErr):
		return string(renderErr.Kind)
	default:
		return string(ferrors.GetCategory(err))
	}
}

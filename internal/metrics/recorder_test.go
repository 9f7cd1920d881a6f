package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Millisecond)
	r.IncStageResult("render", ResultFailed)
	r.ObserveRunDuration(time.Second)
	r.IncRunOutcome(OutcomeCanceled)
	r.IncModelAttempt("anthropic", "success")
	r.IncRetry("invoke")
	r.IncRetryExhausted("invoke")
	r.AddModelTokens("anthropic", "output", 10)
	r.ObserveCloneDuration(time.Second, true)
}

var _ Recorder = (*PrometheusRecorder)(nil)

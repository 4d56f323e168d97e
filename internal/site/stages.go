package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/perjones/mdblog/internal/logfields"
	"github.com/perjones/mdblog/internal/metrics"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError is a structured error carrying the failing stage and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// namedStage pairs a stage with its report name.
type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages in order, recording timing per stage and
// stopping on the first error. The build is single-pass: no retries.
func runStages(ctx context.Context, bs *BuildState, rec metrics.Recorder, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.recordStageError(se)
			rec.IncStageResult(st.name, metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.name] = dur
		rec.ObserveStageDuration(st.name, dur)

		if err != nil {
			se := newFatalStageError(st.name, err)
			bs.Report.recordStageError(se)
			rec.IncStageResult(st.name, metrics.ResultFatal)
			slog.Error("Build stage failed",
				logfields.Stage(st.name),
				logfields.DurationMS(float64(dur.Milliseconds())),
				logfields.Error(err))
			return se
		}

		rec.IncStageResult(st.name, metrics.ResultSuccess)
		slog.Debug("Build stage completed",
			logfields.Stage(st.name),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}

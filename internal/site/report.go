package site

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/perjones/mdblog/internal/errors"
)

// reportFileName is written into the output tree after a successful build.
const reportFileName = "build-report.json"

// Report summarizes one build for the status API and the output tree.
type Report struct {
	BuildID        string                   `json:"build_id"`
	StartedAt      time.Time                `json:"started_at"`
	Duration       time.Duration            `json:"duration_ns"`
	Outcome        string                   `json:"outcome"` // success|failed|canceled
	Pages          int                      `json:"pages"`
	Assets         int                      `json:"assets"`
	Routes         []string                 `json:"routes,omitempty"`
	StageDurations map[string]time.Duration `json:"stage_durations_ns"`
	FailedStage    string                   `json:"failed_stage,omitempty"`
	FailedFile     string                   `json:"failed_file,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		StartedAt:      time.Now().UTC(),
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *Report) recordStageError(se *StageError) {
	r.FailedStage = se.Stage
	r.Error = se.Err.Error()
	if se.Kind == StageErrorCanceled {
		r.Outcome = "canceled"
	} else {
		r.Outcome = "failed"
	}
	var be *apperrors.BuildError
	if stderrors.As(se.Err, &be) {
		r.FailedFile = be.File()
	}
}

// persist writes the report into the root of the built tree.
func (r *Report) persist(dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, reportFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.IOFailure("write", path, err)
	}
	return nil
}

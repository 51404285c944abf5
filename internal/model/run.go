package model

import "time"

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded execution of the ETL pipeline.
type Run struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunResult summarizes what a pipeline run produced.
type RunResult struct {
	DatasetsExtracted int                    `json:"datasets_extracted"`
	DatasetsCleaned   int                    `json:"datasets_cleaned"`
	TablesDerived     int                    `json:"tables_derived"`
	RowsDropped       int                    `json:"rows_dropped"`
	SkippedTables     map[string][]string    `json:"skipped_tables,omitempty"`
	Reports           map[string]CleanReport `json:"reports,omitempty"`
	DurationMS        int64                  `json:"duration_ms"`
}

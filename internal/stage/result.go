package stage

// Result is the stage outcome handed back to the orchestrator and pushed
// to result sinks.
type Result struct {
	StageName        string         `json:"stage_name"`
	Success          bool           `json:"success"`
	DurationSeconds  float64        `json:"duration_seconds"`
	RecordsProcessed int            `json:"records_processed"`
	OutputFiles      []string       `json:"output_files,omitempty"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// manifestOutcome is the tagged per-manifest result: ok-with-count or
// failed-with-reason. Execute folds the collected outcomes into the
// stage-level success decision instead of aborting on the first failure.
type manifestOutcome struct {
	manifest string
	records  int
	err      error
}

func (o manifestOutcome) failed() bool { return o.err != nil }

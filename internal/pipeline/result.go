package pipeline

// Status is the terminal state of one stage within a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

type StageResult struct {
	Name   string
	Status Status
	Err    error
}

// RunResult records what happened to every stage of one run, including the
// stages that never executed because an earlier one failed.
type RunResult struct {
	RunID  string
	Stages []StageResult
}

func (r *RunResult) record(name string, status Status, err error) {
	r.Stages = append(r.Stages, StageResult{Name: name, Status: status, Err: err})
}

// Status returns the recorded status of the named stage, or "" when the
// stage is unknown.
func (r *RunResult) Status(name string) Status {
	for _, s := range r.Stages {
		if s.Name == name {
			return s.Status
		}
	}
	return ""
}

// Succeeded reports whether every stage completed successfully.
func (r *RunResult) Succeeded() bool {
	for _, s := range r.Stages {
		if s.Status != StatusSucceeded {
			return false
		}
	}
	return len(r.Stages) > 0
}

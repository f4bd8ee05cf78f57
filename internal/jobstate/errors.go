package jobstate

import "github.com/rs/zerolog"

// ErrorBehavior tells the orchestrator what to do after a stage fails,
// generalizing the teacher's ErrorBehavior/ProcessingError pair
// (internal/core/logging.go) from UI-task abort semantics to pipeline
// stage semantics.
type ErrorBehavior int

const (
	AbortJob ErrorBehavior = iota
	RetryStage
	ContinueWithWarning
)

func (b ErrorBehavior) String() string {
	switch b {
	case RetryStage:
		return "retry_stage"
	case ContinueWithWarning:
		return "continue_with_warning"
	default:
		return "abort_job"
	}
}

// StageError wraps a failure inside one pipeline stage with enough
// context to drive asr_failed bookkeeping and log level selection.
type StageError struct {
	Stage    string
	Behavior ErrorBehavior
	Level    zerolog.Level
	Err      error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// IsASRStage reports whether stage begins with "asr_", the condition
// that routes a failure into asr_failed bookkeeping (spec §4.4).
func IsASRStage(stage string) bool {
	return len(stage) >= 4 && stage[:4] == "asr_"
}

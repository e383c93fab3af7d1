package core

import "errors"

// Scheduling errors returned to the caller of Spawn/SpawnAfter
var (
	// ErrAlreadyPending is returned when a task already has as many
	// outstanding instances as its capacity allows
	ErrAlreadyPending = errors.New("task already pending")

	// ErrQueueFull is returned when the timer queue has no free slot
	ErrQueueFull = errors.New("timer queue full")

	// ErrUnknownTask is returned for a TaskID outside the task table
	ErrUnknownTask = errors.New("unknown task")

	// ErrStarted is returned when Start is called twice
	ErrStarted = errors.New("scheduler already started")
)

// TaskError wraps a failure returned by a task body
type TaskError struct {
	Task TaskID
	Name string
	Err  error
}

func (e *TaskError) Error() string {
	return "task " + e.Name + ": " + e.Err.Error()
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

package core

// TaskID identifies one task kind. It is the index of the task in the
// table passed to NewScheduler.
type TaskID uint8

// Priority is a static execution priority. 0 is thread mode (init and idle),
// tasks use 1 and up, and the timer interrupt runs above every task.
type Priority uint8

// Payload is a small copy-by-value argument carried by a spawned instance
type Payload uint32

// MaxTasks is the size of the task table supported by the resource
// arbiter's accessor masks
const MaxTasks = 64

// Task describes one task kind. The table of tasks is fixed at
// NewScheduler and never changes afterwards.
type Task struct {
	Name     string
	Priority Priority

	// Capacity is the number of instances that may be outstanding at once.
	// Zero means 1, a single-instance task.
	Capacity uint8

	// Shared lists the shared cells the task body may lock
	Shared []Resource
}

func (t *Task) capacity() uint8 {
	if t.Capacity == 0 {
		return 1
	}
	return t.Capacity
}

// Handler runs the body of the task named by cx.Task. Applications implement
// it as a single switch over their task kinds.
type Handler func(cx *Context) error

// Context is handed to a task body for the duration of one invocation
type Context struct {
	Task      TaskID
	Priority  Priority
	Scheduled Instant // instant the instance was due
	Payload   Payload

	sched *Scheduler
}

// Now returns the current instant
func (cx *Context) Now() Instant {
	return cx.sched.Now()
}

// Spawn requests execution of task as soon as possible at its own priority
func (cx *Context) Spawn(task TaskID, payload Payload) error {
	return cx.sched.Spawn(task, payload)
}

// SpawnAfter requests execution of task no earlier than d ticks from now
func (cx *Context) SpawnAfter(task TaskID, d Duration, payload Payload) error {
	return cx.sched.SpawnAfter(task, d, payload)
}

// SpawnAt requests execution of task no earlier than at. Periodic tasks can
// use cx.Scheduled as the base to avoid accumulating dispatch latency.
func (cx *Context) SpawnAt(task TaskID, at Instant, payload Payload) error {
	return cx.sched.SpawnAt(task, at, payload)
}

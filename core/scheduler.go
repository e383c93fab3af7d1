package core

import "errors"

// DefaultQueueCapacity sizes the timer queue when Config leaves it zero
const DefaultQueueCapacity = 16

// Config describes the fixed task set and the hardware the scheduler owns
type Config struct {
	Tasks   []Task
	Handler Handler

	// QueueCapacity is the maximum number of pending instances across all
	// tasks. It must cover the sum of the task capacities.
	QueueCapacity int

	Counter    Counter
	Controller Controller

	// TimerLine and OverflowLine run above every task priority.
	// DispatchLines[p-1] is the software vector for task priority p.
	TimerLine     Line
	OverflowLine  Line
	DispatchLines []Line
}

// Stats holds scheduler counters
type Stats struct {
	Spawned   uint32 // instances accepted by the queue
	Rejected  uint32 // spawns refused
	Fired     uint32 // instances moved to a ready queue
	Completed uint32 // bodies that returned nil
	Errors    uint32 // bodies that returned an error
	Overflows uint32 // counter wraps
	MaxLate   uint64 // largest gap in ticks between wake time and firing
	LastError error
}

// Scheduler owns the monotonic clock, the timer queue and the per-priority
// ready queues. Its On* methods are the interrupt handlers; platform code
// binds them to the timer compare, counter overflow and dispatch vectors.
type Scheduler struct {
	tasks    []Task
	handler  Handler
	clock    *Clock
	queue    *TimerQueue
	ready    []readyQueue
	ctrl     Controller
	timer    Line
	overflow Line
	dispatch []Line
	top      Priority // priority of the timer lines, ceiling of the queue
	started  bool
	stats    Stats
}

// NewScheduler validates the task table and takes ownership of the counter
// and controller. Nothing runs until Start.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Counter == nil || cfg.Controller == nil || cfg.Handler == nil {
		return nil, errors.New("scheduler: counter, controller and handler are required")
	}
	if len(cfg.Tasks) == 0 || len(cfg.Tasks) > MaxTasks {
		return nil, errors.New("scheduler: task table must hold 1 to 64 tasks")
	}
	if len(cfg.DispatchLines) == 0 {
		return nil, errors.New("scheduler: no dispatch lines")
	}

	levels := Priority(len(cfg.DispatchLines))
	capacity := cfg.QueueCapacity
	if capacity == 0 {
		capacity = DefaultQueueCapacity
	}

	total := 0
	for i := range cfg.Tasks {
		t := &cfg.Tasks[i]
		if t.Priority == 0 || t.Priority > levels {
			return nil, errors.New("scheduler: task " + t.Name + " has no dispatch line for priority " + utoa(uint32(t.Priority)))
		}
		total += int(t.capacity())
	}
	if total > capacity {
		return nil, errors.New("scheduler: queue capacity " + utoa(uint32(capacity)) + " below total task capacity " + utoa(uint32(total)))
	}

	s := &Scheduler{
		tasks:    cfg.Tasks,
		handler:  cfg.Handler,
		clock:    NewClock(cfg.Counter),
		queue:    NewTimerQueue(capacity, cfg.Tasks),
		ready:    make([]readyQueue, levels),
		ctrl:     cfg.Controller,
		timer:    cfg.TimerLine,
		overflow: cfg.OverflowLine,
		dispatch: cfg.DispatchLines,
		top:      levels + 1,
	}
	for i := range s.ready {
		s.ready[i] = newReadyQueue(capacity)
	}
	s.clock.fire = func() {
		RecordTiming(EvtTimerPast, noTask, uint32(s.clock.Now()), 0, 0)
		s.ctrl.Pend(s.timer)
	}
	return s, nil
}

// Start computes the resource ceilings and arms the timer for whatever
// was spawned during initialization
func (s *Scheduler) Start() error {
	if s.started {
		return ErrStarted
	}
	for i := range s.tasks {
		t := &s.tasks[i]
		for _, r := range t.Shared {
			r.bind(TaskID(i), t.Priority, s.ctrl)
		}
	}

	state := s.ctrl.Raise(s.top)
	s.started = true
	s.rearm()
	s.ctrl.Restore(state)
	return nil
}

// Now returns the current instant
func (s *Scheduler) Now() Instant {
	return s.clock.Now()
}

// TimerPriority returns the priority the timer and overflow lines must be
// bound at
func (s *Scheduler) TimerPriority() Priority {
	return s.top
}

// Levels returns the number of task priority levels
func (s *Scheduler) Levels() Priority {
	return Priority(len(s.dispatch))
}

// Task returns the descriptor of a task
func (s *Scheduler) Task(id TaskID) (Task, bool) {
	if int(id) >= len(s.tasks) {
		return Task{}, false
	}
	return s.tasks[id], true
}

// Idle returns a thread-mode context for the main loop. It may lock any
// shared cell.
func (s *Scheduler) Idle() *Context {
	return &Context{Task: noTask, sched: s}
}

// Spawn requests execution of task as soon as possible at its priority
func (s *Scheduler) Spawn(task TaskID, payload Payload) error {
	return s.SpawnAt(task, s.clock.Now(), payload)
}

// SpawnAfter requests execution of task no earlier than d ticks from now
func (s *Scheduler) SpawnAfter(task TaskID, d Duration, payload Payload) error {
	return s.SpawnAt(task, s.clock.Now().Add(d), payload)
}

// SpawnAt requests execution of task no earlier than at. It fails with
// ErrAlreadyPending or ErrQueueFull and leaves the queue unchanged.
func (s *Scheduler) SpawnAt(task TaskID, at Instant, payload Payload) error {
	if int(task) >= len(s.tasks) {
		return ErrUnknownTask
	}

	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)

	err := s.queue.Insert(Entry{
		WakeAt:   at,
		Task:     task,
		Priority: s.tasks[task].Priority,
		Payload:  payload,
	})
	if err != nil {
		s.stats.Rejected++
		reason := uint32(1)
		if errors.Is(err, ErrQueueFull) {
			reason = 2
		}
		RecordTiming(EvtSpawnReject, uint8(task), uint32(s.clock.Now()), reason, 0)
		return err
	}

	s.stats.Spawned++
	RecordTiming(EvtSpawn, uint8(task), uint32(s.clock.Now()), uint32(at), 0)

	// Only the earliest entry decides the compare value
	if s.started {
		if earliest, _ := s.queue.PeekEarliest(); earliest == at {
			s.rearm()
		}
	}
	return nil
}

// OnTimer is the compare interrupt handler. It moves every due instance to
// the ready queue of its priority, pends the matching dispatch lines and
// re-arms the compare for the next pending entry.
func (s *Scheduler) OnTimer() {
	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)

	now := s.clock.Now()
	for e := range s.queue.PopDue(now) {
		level := e.Priority - 1
		if !s.ready[level].push(e) {
			// Ready queues hold the whole queue capacity
			panic("scheduler: ready queue overflow")
		}
		late := uint64(now.Sub(e.WakeAt))
		if late > s.stats.MaxLate {
			s.stats.MaxLate = late
		}
		s.stats.Fired++
		RecordTiming(EvtTimerFire, uint8(e.Task), uint32(now), uint32(late), 0)
		s.ctrl.Pend(s.dispatch[level])
	}
	s.rearm()
}

// OnOverflow is the counter wrap handler
func (s *Scheduler) OnOverflow() {
	if !s.clock.OnOverflow() {
		return
	}

	state := s.ctrl.Raise(s.top)
	s.stats.Overflows++
	RecordTiming(EvtOverflow, noTask, uint32(s.clock.Now()), s.clock.high, 0)
	s.rearm()
	s.ctrl.Restore(state)
}

// OnDispatch is the handler of the dispatch line for priority p. It runs
// the bodies waiting at that level to completion, in FIFO order.
func (s *Scheduler) OnDispatch(p Priority) {
	if p == 0 || int(p) > len(s.ready) {
		return
	}
	rq := &s.ready[p-1]

	for {
		state := s.ctrl.Raise(s.top)
		e, ok := rq.pop()
		if ok {
			// The body may re-arm its own task from here on
			s.queue.Release(e.Task)
		}
		s.ctrl.Restore(state)
		if !ok {
			return
		}

		RecordTiming(EvtTaskStart, uint8(e.Task), uint32(s.clock.Now()), uint32(p), 0)
		cx := Context{
			Task:      e.Task,
			Priority:  p,
			Scheduled: e.WakeAt,
			Payload:   e.Payload,
			sched:     s,
		}
		err := s.handler(&cx)
		s.finish(e.Task, err)
	}
}

// finish records the outcome of one body
func (s *Scheduler) finish(task TaskID, err error) {
	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)

	if err == nil {
		s.stats.Completed++
		return
	}

	terr := &TaskError{Task: task, Name: s.tasks[task].Name, Err: err}
	s.stats.Errors++
	s.stats.LastError = terr
	RecordTiming(EvtTaskError, uint8(task), uint32(s.clock.Now()), s.stats.Errors, 0)
	DebugAsync(terr.Error())
}

// Stats returns a snapshot of the scheduler counters
func (s *Scheduler) Stats() Stats {
	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)
	return s.stats
}

// Pending returns the number of entries waiting in the timer queue
func (s *Scheduler) Pending() int {
	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)
	return s.queue.Len()
}

// Outstanding returns the instances of task spawned but not yet started
func (s *Scheduler) Outstanding(task TaskID) int {
	state := s.ctrl.Raise(s.top)
	defer s.ctrl.Restore(state)
	return s.queue.Outstanding(task)
}

// rearm programs the compare for the earliest pending entry, or disables
// it when the queue is empty. Callers hold the queue ceiling.
func (s *Scheduler) rearm() {
	at, ok := s.queue.PeekEarliest()
	if !ok {
		s.clock.DisableCompare()
		return
	}
	s.clock.SetCompare(at)
}

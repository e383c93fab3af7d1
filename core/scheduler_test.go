package core

import (
	"errors"
	"testing"
)

const (
	lineTimer Line = iota
	lineOverflow
	lineP1
	lineP2
	lineP3
)

// harness runs a scheduler on the simulated counter and controller
type harness struct {
	ctrl  *SoftController
	cnt   *SimCounter
	sched *Scheduler
	trace []string
}

func newHarness(t *testing.T, tasks []Task, start uint32, body func(h *harness, cx *Context) error) *harness {
	t.Helper()

	h := &harness{
		ctrl: NewSoftController(),
		cnt:  NewSimCounter(start),
	}
	s, err := NewScheduler(Config{
		Tasks:         tasks,
		Handler:       func(cx *Context) error { return body(h, cx) },
		QueueCapacity: 16,
		Counter:       h.cnt,
		Controller:    h.ctrl,
		TimerLine:     lineTimer,
		OverflowLine:  lineOverflow,
		DispatchLines: []Line{lineP1, lineP2, lineP3},
	})
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	s.BindSoft(h.ctrl)
	h.cnt.Attach(h.ctrl, lineTimer, lineOverflow)
	h.sched = s
	return h
}

func (h *harness) record(s string) {
	h.trace = append(h.trace, s)
}

func equalTrace(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestNewSchedulerRejectsBadConfig(t *testing.T) {
	base := Config{
		Tasks:         testTasks(1),
		Handler:       func(*Context) error { return nil },
		Counter:       NewSimCounter(0),
		Controller:    NewSoftController(),
		DispatchLines: []Line{lineP1},
	}

	noLevel := base
	noLevel.Tasks = testTasks(2)
	if _, err := NewScheduler(noLevel); err == nil {
		t.Error("Expected error for priority without a dispatch line")
	}

	zero := base
	zero.Tasks = testTasks(0)
	if _, err := NewScheduler(zero); err == nil {
		t.Error("Expected error for priority 0 task")
	}

	small := base
	small.QueueCapacity = 2
	small.Tasks = []Task{{Name: "a", Priority: 1, Capacity: 2}, {Name: "b", Priority: 1}}
	if _, err := NewScheduler(small); err == nil {
		t.Error("Expected error when task capacities exceed the queue")
	}

	if _, err := NewScheduler(base); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}

func TestSpawnAfterBlinkScenario(t *testing.T) {
	const blink TaskID = 0
	runs := 0
	h := newHarness(t, []Task{{Name: "blink", Priority: 1}}, 0, func(h *harness, cx *Context) error {
		runs++
		return nil
	})

	if err := h.sched.SpawnAfter(blink, 1000000, 0); err != nil {
		t.Fatalf("SpawnAfter failed: %v", err)
	}
	if err := h.sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	h.cnt.Advance(999999)
	if runs != 0 {
		t.Fatalf("Task ran %d ticks early", 1000000-h.cnt.Count())
	}
	if h.sched.Pending() != 1 {
		t.Fatalf("Expected blink still queued, pending=%d", h.sched.Pending())
	}

	h.cnt.Advance(1)
	if runs != 1 {
		t.Fatalf("Expected exactly one run at 1000000, got %d", runs)
	}
	if h.sched.Pending() != 0 {
		t.Errorf("Expected empty queue, pending=%d", h.sched.Pending())
	}

	h.cnt.Advance(5000000)
	if runs != 1 {
		t.Errorf("One-shot task ran again: %d runs", runs)
	}
}

func TestDispatchOrderScenario(t *testing.T) {
	const (
		taskA TaskID = iota
		taskB
		taskC
	)
	tasks := []Task{
		{Name: "A", Priority: 1},
		{Name: "B", Priority: 2},
		{Name: "C", Priority: 1},
	}
	h := newHarness(t, tasks, 0, func(h *harness, cx *Context) error {
		h.record(tasks[cx.Task].Name)
		return nil
	})

	h.sched.SpawnAt(taskA, 100, 0)
	h.sched.SpawnAt(taskB, 100, 0)
	h.sched.SpawnAt(taskC, 50, 0)
	h.sched.Start()

	h.cnt.Advance(100)
	if want := []string{"C", "B", "A"}; !equalTrace(h.trace, want) {
		t.Errorf("Expected %v, got %v", want, h.trace)
	}
}

func TestSimultaneousDueRunsHighestPriorityFirst(t *testing.T) {
	tasks := []Task{
		{Name: "low", Priority: 1},
		{Name: "mid", Priority: 2},
		{Name: "high", Priority: 3},
	}
	h := newHarness(t, tasks, 500, func(h *harness, cx *Context) error {
		h.record(tasks[cx.Task].Name)
		return nil
	})

	// Spawned during init with wake=now, all due the moment the timer starts
	h.sched.Spawn(0, 0)
	h.sched.Spawn(1, 0)
	h.sched.Spawn(2, 0)
	if len(h.trace) != 0 {
		t.Fatal("Tasks ran before Start")
	}
	h.sched.Start()

	if want := []string{"high", "mid", "low"}; !equalTrace(h.trace, want) {
		t.Errorf("Expected %v, got %v", want, h.trace)
	}
}

func TestHigherPriorityPreemptsBody(t *testing.T) {
	const (
		low TaskID = iota
		high
	)
	tasks := []Task{{Name: "low", Priority: 1}, {Name: "high", Priority: 3}}
	h := newHarness(t, tasks, 0, func(h *harness, cx *Context) error {
		switch cx.Task {
		case low:
			h.record("low-start")
			if err := cx.Spawn(high, 0); err != nil {
				return err
			}
			h.record("low-end")
		case high:
			h.record("high")
		}
		return nil
	})
	h.sched.Start()

	h.sched.Spawn(low, 0)
	if want := []string{"low-start", "high", "low-end"}; !equalTrace(h.trace, want) {
		t.Errorf("Expected %v, got %v", want, h.trace)
	}
}

func TestLowerPrioritySpawnWaitsForCaller(t *testing.T) {
	const (
		low TaskID = iota
		high
	)
	tasks := []Task{{Name: "low", Priority: 1}, {Name: "high", Priority: 2}}
	h := newHarness(t, tasks, 0, func(h *harness, cx *Context) error {
		switch cx.Task {
		case high:
			h.record("high-start")
			cx.Spawn(low, 0)
			if h.ctrl.IsPending(lineP1) {
				h.record("low-pending")
			}
			h.record("high-end")
		case low:
			h.record("low")
		}
		if h.ctrl.Running() != cx.Priority {
			h.record("wrong-level")
		}
		return nil
	})
	h.sched.Start()

	h.sched.Spawn(high, 0)
	if want := []string{"high-start", "low-pending", "high-end", "low"}; !equalTrace(h.trace, want) {
		t.Errorf("Expected %v, got %v", want, h.trace)
	}
}

func TestPeriodicSelfRearmAcrossWrap(t *testing.T) {
	const (
		blink  TaskID = 0
		period        = 1000
	)
	var instants []Instant
	h := newHarness(t, []Task{{Name: "blink", Priority: 1}}, 0xFFFFF000, func(h *harness, cx *Context) error {
		instants = append(instants, cx.Now())
		return cx.SpawnAfter(blink, period, 0)
	})

	h.sched.Spawn(blink, 0)
	h.sched.Start()

	// Run through the 32-bit wrap in uneven steps
	for i := 0; i < 100; i++ {
		h.cnt.Advance(97)
	}

	if len(instants) < 9 {
		t.Fatalf("Expected about 10 runs, got %d", len(instants))
	}
	for i := 1; i < len(instants); i++ {
		gap := instants[i].Sub(instants[i-1])
		if gap < period {
			t.Errorf("Run %d fired after %d ticks, minimum is %d", i, gap, period)
		}
	}
	if st := h.sched.Stats(); st.Overflows != 1 {
		t.Errorf("Expected one counter wrap, got %d", st.Overflows)
	}
	if last := instants[len(instants)-1]; last < 1<<32 {
		t.Errorf("Expected instants past the wrap, last=%d", last)
	}
}

func TestSpawnDuplicateReturnsAlreadyPending(t *testing.T) {
	const blink TaskID = 0
	h := newHarness(t, []Task{{Name: "blink", Priority: 1}}, 0, func(h *harness, cx *Context) error {
		return nil
	})
	h.sched.Start()

	if err := h.sched.SpawnAfter(blink, 100, 0); err != nil {
		t.Fatalf("First spawn failed: %v", err)
	}
	err := h.sched.SpawnAfter(blink, 50, 0)
	if !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("Expected ErrAlreadyPending, got %v", err)
	}

	st := h.sched.Stats()
	if st.Spawned != 1 || st.Rejected != 1 {
		t.Errorf("Expected 1 spawned and 1 rejected, got %d/%d", st.Spawned, st.Rejected)
	}
	if v, _ := h.cnt.Armed(); v != 100 {
		t.Errorf("Rejected spawn moved the compare to %d", v)
	}
}

func TestBodyMayRespawnItself(t *testing.T) {
	const job TaskID = 0
	var respawnErr error
	runs := 0
	h := newHarness(t, []Task{{Name: "job", Priority: 1}}, 0, func(h *harness, cx *Context) error {
		runs++
		if runs == 1 {
			respawnErr = cx.SpawnAfter(job, 10, 0)
		}
		return nil
	})
	h.sched.Start()
	h.sched.Spawn(job, 0)
	h.cnt.Advance(10)

	if respawnErr != nil {
		t.Errorf("Re-arming from the body failed: %v", respawnErr)
	}
	if runs != 2 {
		t.Errorf("Expected 2 runs, got %d", runs)
	}
}

func TestTaskErrorsAreRecorded(t *testing.T) {
	errBus := errors.New("bus stuck")
	h := newHarness(t, []Task{{Name: "screen_clear", Priority: 1}}, 0, func(h *harness, cx *Context) error {
		return errBus
	})
	h.sched.Start()
	h.sched.Spawn(0, 0)

	st := h.sched.Stats()
	if st.Errors != 1 || st.Completed != 0 {
		t.Fatalf("Expected 1 error, got errors=%d completed=%d", st.Errors, st.Completed)
	}
	var terr *TaskError
	if !errors.As(st.LastError, &terr) {
		t.Fatalf("Expected *TaskError, got %T", st.LastError)
	}
	if terr.Name != "screen_clear" || !errors.Is(terr, errBus) {
		t.Errorf("Unexpected task error %v", terr)
	}
}

func TestPayloadDelivered(t *testing.T) {
	var got []Payload
	tasks := []Task{{Name: "pwm", Priority: 2, Capacity: 3}}
	h := newHarness(t, tasks, 0, func(h *harness, cx *Context) error {
		got = append(got, cx.Payload)
		return nil
	})
	h.sched.Start()

	h.sched.SpawnAfter(0, 20, 30)
	h.sched.SpawnAfter(0, 10, 20)
	h.sched.SpawnAfter(0, 10, 21)
	h.cnt.Advance(20)

	want := []Payload{20, 21, 30}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}

func TestUnknownTaskSpawn(t *testing.T) {
	h := newHarness(t, testTasks(1), 0, func(h *harness, cx *Context) error { return nil })
	if err := h.sched.Spawn(9, 0); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Expected ErrUnknownTask, got %v", err)
	}
}

func TestStartTwice(t *testing.T) {
	h := newHarness(t, testTasks(1), 0, func(h *harness, cx *Context) error { return nil })
	if err := h.sched.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := h.sched.Start(); !errors.Is(err, ErrStarted) {
		t.Errorf("Expected ErrStarted, got %v", err)
	}
}

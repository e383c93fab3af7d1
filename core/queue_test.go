package core

import (
	"errors"
	"testing"
)

func testTasks(prios ...Priority) []Task {
	tasks := make([]Task, len(prios))
	for i, p := range prios {
		tasks[i] = Task{Name: string(rune('A' + i)), Priority: p}
	}
	return tasks
}

func drain(q *TimerQueue, now Instant) []Entry {
	var out []Entry
	for e := range q.PopDue(now) {
		out = append(out, e)
	}
	return out
}

func TestQueuePopDueSubset(t *testing.T) {
	tasks := testTasks(1, 1, 1, 1, 1, 1)
	q := NewTimerQueue(8, tasks)

	wakes := []Instant{600, 100, 500, 300, 200, 400}
	for i, w := range wakes {
		if err := q.Insert(Entry{WakeAt: w, Task: TaskID(i), Priority: 1}); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	got := drain(q, 350)
	want := []Instant{100, 200, 300}
	if len(got) != len(want) {
		t.Fatalf("Expected %d due entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].WakeAt != want[i] {
			t.Errorf("Entry %d: expected wake %d, got %d", i, want[i], got[i].WakeAt)
		}
	}

	if q.Len() != 3 {
		t.Errorf("Expected 3 entries left, got %d", q.Len())
	}
	if earliest, ok := q.PeekEarliest(); !ok || earliest != 400 {
		t.Errorf("Expected earliest remaining 400, got %d ok=%v", earliest, ok)
	}
}

func TestQueueEqualWakeHigherPriorityFirst(t *testing.T) {
	tasks := testTasks(1, 2)
	q := NewTimerQueue(4, tasks)

	q.Insert(Entry{WakeAt: 10, Task: 0, Priority: 1})
	q.Insert(Entry{WakeAt: 10, Task: 1, Priority: 2})

	got := drain(q, 10)
	if len(got) != 2 || got[0].Task != 1 || got[1].Task != 0 {
		t.Errorf("Expected priority 2 entry first, got %+v", got)
	}
}

func TestQueueScenarioCBA(t *testing.T) {
	const (
		taskA TaskID = iota
		taskB
		taskC
	)
	tasks := testTasks(1, 2, 1)
	q := NewTimerQueue(4, tasks)

	q.Insert(Entry{WakeAt: 100, Task: taskA, Priority: 1})
	q.Insert(Entry{WakeAt: 100, Task: taskB, Priority: 2})
	q.Insert(Entry{WakeAt: 50, Task: taskC, Priority: 1})

	got := drain(q, 100)
	want := []TaskID{taskC, taskB, taskA}
	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Task != want[i] {
			t.Errorf("Position %d: expected task %d, got %d", i, want[i], got[i].Task)
		}
	}
}

func TestQueueFIFOWithinPriority(t *testing.T) {
	tasks := []Task{{Name: "multi", Priority: 1, Capacity: 5}}
	q := NewTimerQueue(8, tasks)

	for i := 0; i < 5; i++ {
		if err := q.Insert(Entry{WakeAt: 7, Task: 0, Priority: 1, Payload: Payload(i)}); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	for i, e := range drain(q, 7) {
		if e.Payload != Payload(i) {
			t.Errorf("Expected insertion order, position %d has payload %d", i, e.Payload)
		}
	}
}

func TestQueueAlreadyPending(t *testing.T) {
	tasks := testTasks(1)
	q := NewTimerQueue(4, tasks)

	if err := q.Insert(Entry{WakeAt: 1000, Task: 0, Priority: 1}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := q.Insert(Entry{WakeAt: 500, Task: 0, Priority: 1})
	if !errors.Is(err, ErrAlreadyPending) {
		t.Fatalf("Expected ErrAlreadyPending, got %v", err)
	}

	// Failed insert leaves the queue unchanged
	if q.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", q.Len())
	}
	if earliest, _ := q.PeekEarliest(); earliest != 1000 {
		t.Errorf("Expected earliest 1000, got %d", earliest)
	}
	if q.Outstanding(0) != 1 {
		t.Errorf("Expected 1 outstanding instance, got %d", q.Outstanding(0))
	}

	// Still pending after the drain until the dispatcher releases it
	drain(q, 1000)
	if !errors.Is(q.Insert(Entry{WakeAt: 2000, Task: 0, Priority: 1}), ErrAlreadyPending) {
		t.Error("Expected instance to stay outstanding until Release")
	}
	q.Release(0)
	if err := q.Insert(Entry{WakeAt: 2000, Task: 0, Priority: 1}); err != nil {
		t.Errorf("Insert after Release failed: %v", err)
	}
}

func TestQueueFull(t *testing.T) {
	tasks := []Task{{Name: "multi", Priority: 1, Capacity: 10}}
	q := NewTimerQueue(3, tasks)

	for i := 0; i < 3; i++ {
		if err := q.Insert(Entry{WakeAt: Instant(i), Task: 0, Priority: 1}); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if err := q.Insert(Entry{WakeAt: 99, Task: 0, Priority: 1}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
	if q.Len() != 3 || q.Outstanding(0) != 3 {
		t.Errorf("Full queue changed: len=%d outstanding=%d", q.Len(), q.Outstanding(0))
	}
}

func TestQueueUnknownTask(t *testing.T) {
	q := NewTimerQueue(2, testTasks(1))
	if err := q.Insert(Entry{Task: 5}); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Expected ErrUnknownTask, got %v", err)
	}
}

func TestQueueRoundTrip(t *testing.T) {
	const n = 16
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Name: "t", Priority: Priority(1 + i%3)}
	}
	q := NewTimerQueue(n, tasks)

	// Scrambled wake times with repeats
	var latest Instant
	for i := 0; i < n; i++ {
		w := Instant((i * 5) % 11)
		if w > latest {
			latest = w
		}
		if err := q.Insert(Entry{WakeAt: w, Task: TaskID(i), Priority: tasks[i].Priority}); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	got := drain(q, latest)
	if len(got) != n {
		t.Fatalf("Expected %d entries, got %d", n, len(got))
	}

	seen := make(map[TaskID]bool)
	for i, e := range got {
		if seen[e.Task] {
			t.Errorf("Task %d drained twice", e.Task)
		}
		seen[e.Task] = true

		if i > 0 {
			prev := got[i-1]
			if e.WakeAt.Before(prev.WakeAt) {
				t.Errorf("Out of order at %d: %d after %d", i, e.WakeAt, prev.WakeAt)
			}
			if e.WakeAt == prev.WakeAt && e.Priority > prev.Priority {
				t.Errorf("Priority tie-break violated at %d", i)
			}
		}
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, %d left", q.Len())
	}
}

func TestQueuePopDueStopsEarly(t *testing.T) {
	q := NewTimerQueue(4, testTasks(1, 1, 1))
	for i := 0; i < 3; i++ {
		q.Insert(Entry{WakeAt: Instant(i), Task: TaskID(i), Priority: 1})
	}

	for e := range q.PopDue(10) {
		if e.Task != 0 {
			t.Errorf("Expected task 0 first, got %d", e.Task)
		}
		break
	}

	if q.Len() != 2 {
		t.Errorf("Expected lazy drain to leave 2 entries, got %d", q.Len())
	}
}

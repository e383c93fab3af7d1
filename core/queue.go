package core

import "iter"

// Entry is a pending wake request in the timer queue
type Entry struct {
	WakeAt   Instant
	Task     TaskID
	Priority Priority
	Payload  Payload

	seq uint32 // insertion order, breaks ties between equal-priority entries
}

// TimerQueue is a fixed-capacity priority queue of pending task instances.
// Entries are ordered by wake time, then by higher priority, then by
// insertion order. Storage is allocated once by NewTimerQueue.
//
// A task instance counts as outstanding from Insert until Release, which the
// dispatcher calls when the task body starts. Insert refuses an entry whose
// task already has Capacity outstanding instances.
type TimerQueue struct {
	heap []Entry
	seq  uint32

	outstanding []uint8
	limit       []uint8
}

// NewTimerQueue creates a queue holding at most capacity entries for the
// given task table
func NewTimerQueue(capacity int, tasks []Task) *TimerQueue {
	q := &TimerQueue{
		heap:        make([]Entry, 0, capacity),
		outstanding: make([]uint8, len(tasks)),
		limit:       make([]uint8, len(tasks)),
	}
	for i := range tasks {
		q.limit[i] = tasks[i].capacity()
	}
	return q
}

// Insert adds a wake request. The queue is left unchanged on error.
func (q *TimerQueue) Insert(e Entry) error {
	if int(e.Task) >= len(q.limit) {
		return ErrUnknownTask
	}
	if q.outstanding[e.Task] >= q.limit[e.Task] {
		return ErrAlreadyPending
	}
	if len(q.heap) == cap(q.heap) {
		return ErrQueueFull
	}

	e.seq = q.seq
	q.seq++
	q.outstanding[e.Task]++

	q.heap = append(q.heap, e)
	q.up(len(q.heap) - 1)
	return nil
}

// PeekEarliest returns the wake time of the first entry
func (q *TimerQueue) PeekEarliest() (Instant, bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	return q.heap[0].WakeAt, true
}

// PopDue removes and yields every entry with WakeAt <= now, in queue order.
// The drain is lazy: entries are removed one at a time as they are consumed,
// and stopping early leaves the rest queued.
func (q *TimerQueue) PopDue(now Instant) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for len(q.heap) > 0 && !q.heap[0].WakeAt.After(now) {
			if !yield(q.pop()) {
				return
			}
		}
	}
}

// Release ends the outstanding period of one instance of task
func (q *TimerQueue) Release(task TaskID) {
	if int(task) < len(q.outstanding) && q.outstanding[task] > 0 {
		q.outstanding[task]--
	}
}

// Outstanding returns the number of instances of task inserted but not yet
// released
func (q *TimerQueue) Outstanding(task TaskID) int {
	if int(task) >= len(q.outstanding) {
		return 0
	}
	return int(q.outstanding[task])
}

// Len returns the number of queued entries
func (q *TimerQueue) Len() int {
	return len(q.heap)
}

func (q *TimerQueue) pop() Entry {
	top := q.heap[0]
	last := len(q.heap) - 1
	q.heap[0] = q.heap[last]
	q.heap = q.heap[:last]
	if last > 0 {
		q.down(0)
	}
	return top
}

// less orders entries by wake time, then higher priority, then FIFO
func (q *TimerQueue) less(i, j int) bool {
	a, b := &q.heap[i], &q.heap[j]
	if a.WakeAt != b.WakeAt {
		return a.WakeAt.Before(b.WakeAt)
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return int32(a.seq-b.seq) < 0
}

func (q *TimerQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.heap[i], q.heap[parent] = q.heap[parent], q.heap[i]
		i = parent
	}
}

func (q *TimerQueue) down(i int) {
	n := len(q.heap)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && q.less(right, left) {
			smallest = right
		}
		if !q.less(smallest, i) {
			return
		}
		q.heap[i], q.heap[smallest] = q.heap[smallest], q.heap[i]
		i = smallest
	}
}

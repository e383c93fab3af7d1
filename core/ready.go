package core

// readyQueue is the FIFO of due instances waiting for one dispatch level
type readyQueue struct {
	buf  []Entry
	head int
	n    int
}

func newReadyQueue(capacity int) readyQueue {
	return readyQueue{buf: make([]Entry, capacity)}
}

func (r *readyQueue) push(e Entry) bool {
	if r.n == len(r.buf) {
		return false
	}
	r.buf[(r.head+r.n)%len(r.buf)] = e
	r.n++
	return true
}

func (r *readyQueue) pop() (Entry, bool) {
	if r.n == 0 {
		return Entry{}, false
	}
	e := r.buf[r.head]
	r.head = (r.head + 1) % len(r.buf)
	r.n--
	return e, true
}

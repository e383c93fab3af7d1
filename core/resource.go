package core

// Resource is a shared cell that tasks declare in Task.Shared.
// Only Shared implements it.
type Resource interface {
	ResourceName() string
	Ceiling() Priority

	bind(task TaskID, prio Priority, ctrl Controller)
}

// Shared is state reachable from more than one task. Access goes through
// Lock, which raises the caller to the cell's priority ceiling: the highest
// priority among the tasks that declare the cell. Tasks above the ceiling
// are never held up by it.
type Shared[T any] struct {
	name      string
	value     T
	ceiling   Priority
	accessors uint64
	ctrl      Controller
}

// NewShared creates a shared cell holding v
func NewShared[T any](name string, v T) *Shared[T] {
	return &Shared[T]{name: name, value: v}
}

// ResourceName returns the name given to NewShared
func (r *Shared[T]) ResourceName() string {
	return r.name
}

// Ceiling returns the ceiling computed when the scheduler started
func (r *Shared[T]) Ceiling() Priority {
	return r.ceiling
}

func (r *Shared[T]) bind(task TaskID, prio Priority, ctrl Controller) {
	r.accessors |= 1 << task
	if prio > r.ceiling {
		r.ceiling = prio
	}
	r.ctrl = ctrl
}

// Lock runs fn with exclusive access to the cell's value. Tasks must have
// declared the cell; thread-mode contexts (priority 0) may always lock.
// fn must not retain the pointer.
func (r *Shared[T]) Lock(cx *Context, fn func(v *T)) {
	if cx.Priority > 0 {
		assert(r.accessors&(1<<cx.Task) != 0, "shared "+r.name+": task did not declare access")
		assert(cx.Priority <= r.ceiling, "shared "+r.name+": access above ceiling")
	}

	// Nothing that touches the cell can preempt a caller already at the
	// ceiling
	if r.ctrl == nil || cx.Priority >= r.ceiling {
		fn(&r.value)
		return
	}

	state := r.ctrl.Raise(r.ceiling)
	defer r.ctrl.Restore(state)
	fn(&r.value)
}

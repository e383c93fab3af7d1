//go:build !tinygo

package core

// SoftController models a nested vectored interrupt controller on a single
// core. Pending lines run synchronously, highest priority first, whenever
// their priority exceeds both the running level and the raised ceiling.
// A handler that pends a higher-priority line is preempted on the spot.
type SoftController struct {
	lines   [MaxLines]softLine
	running Priority
	ceiling Priority
}

type softLine struct {
	prio    Priority
	handler func()
	bound   bool
	pending bool
}

// NewSoftController creates a controller with no bound lines
func NewSoftController() *SoftController {
	return &SoftController{}
}

// Bind attaches a handler to line at the given priority
func (c *SoftController) Bind(line Line, prio Priority, handler func()) {
	c.lines[line] = softLine{prio: prio, handler: handler, bound: true}
}

// Pend marks line as pending and services it if it may run now
func (c *SoftController) Pend(line Line) {
	c.lines[line].pending = true
	c.service()
}

// Raise lifts the ceiling to at least ceiling
func (c *SoftController) Raise(ceiling Priority) MaskState {
	prev := c.ceiling
	if ceiling > prev {
		c.ceiling = ceiling
	}
	return MaskState(prev)
}

// Restore lowers the ceiling and runs anything that became eligible
func (c *SoftController) Restore(state MaskState) {
	c.ceiling = Priority(state)
	c.service()
}

// Running returns the priority of the handler currently executing,
// 0 in thread mode
func (c *SoftController) Running() Priority {
	return c.running
}

// Ceiling returns the current raised ceiling
func (c *SoftController) Ceiling() Priority {
	return c.ceiling
}

// IsPending reports whether line is waiting to run
func (c *SoftController) IsPending(line Line) bool {
	return c.lines[line].pending
}

func (c *SoftController) service() {
	for {
		floor := c.running
		if c.ceiling > floor {
			floor = c.ceiling
		}

		// Highest priority wins, lowest line number breaks ties
		next := -1
		for i := range c.lines {
			l := &c.lines[i]
			if !l.bound || !l.pending || l.prio <= floor {
				continue
			}
			if next < 0 || l.prio > c.lines[next].prio {
				next = i
			}
		}
		if next < 0 {
			return
		}

		l := &c.lines[next]
		l.pending = false
		prev := c.running
		c.running = l.prio
		l.handler()
		c.running = prev
	}
}

// BindSoft attaches the scheduler's handlers to a SoftController at the
// priorities the scheduler expects
func (s *Scheduler) BindSoft(c *SoftController) {
	c.Bind(s.timer, s.top, s.OnTimer)
	c.Bind(s.overflow, s.top, s.OnOverflow)
	for i, line := range s.dispatch {
		p := Priority(i + 1)
		c.Bind(line, p, func() { s.OnDispatch(p) })
	}
}

//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"

	"cadence/core"
)

// Scheduler lines. The dispatch lines borrow the PIO1 interrupts, which
// nothing else on the board uses; pending them in software runs the ready
// tasks of that priority.
const (
	lineTimer core.Line = iota
	lineOverflow
	lineDispatch1
	lineDispatch2
)

// dispatchLines[p-1] runs task priority p
var dispatchLines = [...]core.Line{lineDispatch1, lineDispatch2}

var lineIRQ = [...]uint32{
	lineTimer:     rp.IRQ_TIMER_IRQ_2,
	lineOverflow:  rp.IRQ_TIMER_IRQ_3,
	lineDispatch1: rp.IRQ_PIO1_IRQ_0,
	lineDispatch2: rp.IRQ_PIO1_IRQ_1,
}

// sched is read by the interrupt handlers, which cannot capture
var sched *core.Scheduler

// bindInterrupts installs the vectors and programs the NVIC. sched must be
// set first: the counter may already be about to wrap.
func bindInterrupts(nvic *core.NVIC) {
	interrupt.New(rp.IRQ_TIMER_IRQ_2, handleTimer)
	interrupt.New(rp.IRQ_TIMER_IRQ_3, handleOverflow)
	interrupt.New(rp.IRQ_PIO1_IRQ_0, handleDispatch1)
	interrupt.New(rp.IRQ_PIO1_IRQ_1, handleDispatch2)

	top := sched.TimerPriority()
	nvic.Bind(lineTimer, lineIRQ[lineTimer], top)
	nvic.Bind(lineOverflow, lineIRQ[lineOverflow], top)
	for p := core.Priority(1); p <= sched.Levels(); p++ {
		line := dispatchLines[p-1]
		nvic.Bind(line, lineIRQ[line], p)
	}
}

func handleTimer(interrupt.Interrupt) {
	ackCompare()
	sched.OnTimer()
}

func handleOverflow(interrupt.Interrupt) {
	sched.OnOverflow()
}

func handleDispatch1(interrupt.Interrupt) {
	sched.OnDispatch(1)
}

func handleDispatch2(interrupt.Interrupt) {
	sched.OnDispatch(2)
}

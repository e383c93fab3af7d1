package core

// Line identifies one interrupt source used by the scheduler: the timer
// compare, the counter overflow, or a software-triggered dispatch vector.
type Line uint8

// MaxLines is the number of lines a controller tracks
const MaxLines = 32

// MaskState is the controller state saved by Raise and given back to Restore
type MaskState uint32

// Controller is the interrupt controller seen by the scheduler.
// Platform code binds each Line to a vector and a priority before the
// scheduler starts.
type Controller interface {
	// Pend marks line as pending. It runs as soon as its priority exceeds
	// both the running priority and the current ceiling.
	Pend(line Line)

	// Raise blocks every bound line whose priority is at or below ceiling
	// and returns the previous state. Lines above the ceiling are unaffected.
	Raise(ceiling Priority) MaskState

	// Restore undoes a Raise. Sections must nest.
	Restore(state MaskState)
}

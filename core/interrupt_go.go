//go:build !tinygo

package core

// irqState stands in for the saved interrupt state on regular Go
type irqState uintptr

// disableInterrupts is a no-op on regular Go. Host builds run every handler
// synchronously through SoftController, so there is nothing to mask.
func disableInterrupts() irqState {
	return 0
}

// restoreInterrupts is a no-op on regular Go
func restoreInterrupts(state irqState) {}

//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerALARM2   = timerBase + 0x18
	timerALARM3   = timerBase + 0x1C
	timerARMED    = timerBase + 0x20
	timerTIMERAWL = timerBase + 0x28
	timerINTR     = timerBase + 0x34
	timerINTE     = timerBase + 0x38
)

// ALARM0 belongs to the TinyGo runtime. ALARM2 is the scheduler compare,
// ALARM3 is parked at zero so it matches once per wrap of the low word.
const (
	compareAlarm  = 2
	overflowAlarm = 3

	compareBit  = 1 << compareAlarm
	overflowBit = 1 << overflowAlarm
)

var (
	timerAlarm2 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM2)))
	timerAlarm3 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM3)))
	timerArmed  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerRAWL   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerIntr   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerInte   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// rpCounter is the low word of the 1MHz RP2040 timer. The high word the
// hardware also keeps is ignored; the scheduler clock extends the low word
// itself so the same code runs on 32-bit counters.
type rpCounter struct{}

// InitClock enables the compare and wrap interrupts at the timer block.
// NVIC enables are done when the lines are bound.
func InitClock() {
	timerIntr.Set(compareBit | overflowBit)
	timerAlarm3.Set(0)
	timerInte.SetBits(compareBit | overflowBit)
}

func (rpCounter) Count() uint32 {
	return timerRAWL.Get()
}

func (rpCounter) OverflowPending() bool {
	return timerIntr.HasBits(overflowBit)
}

func (rpCounter) ClearOverflow() {
	timerIntr.Set(overflowBit)
	// Writing the alarm re-arms it for the next pass through zero
	timerAlarm3.Set(0)
}

func (rpCounter) SetCompare(value uint32) {
	timerAlarm2.Set(value)
}

func (rpCounter) DisableCompare() {
	timerArmed.Set(compareBit)
	timerIntr.Set(compareBit)
}

// ackCompare clears the latched compare match before the handler runs
func ackCompare() {
	timerIntr.Set(compareBit)
}

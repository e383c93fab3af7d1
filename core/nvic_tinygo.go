//go:build tinygo && cortexm

package core

import "device/arm"

// HardwareLevels is the number of NVIC priority levels used by the
// scheduler. Cortex-M0+ implements the top two priority bits only.
const HardwareLevels = 4

// NVIC drives the Cortex-M interrupt controller. Critical sections clear the
// enable bits of scheduler lines at or below the ceiling instead of masking
// every interrupt, so higher-priority work keeps running.
type NVIC struct {
	irq    [MaxLines]uint32
	prio   [MaxLines]Priority
	bound  uint32
	masked uint32
}

// NewNVIC creates an NVIC controller with no bound lines
func NewNVIC() *NVIC {
	return &NVIC{}
}

// Bind maps line to a hardware IRQ, programs its priority and enables it.
// The interrupt vector itself is installed by the board with interrupt.New.
func (c *NVIC) Bind(line Line, irq uint32, prio Priority) {
	c.irq[line] = irq
	c.prio[line] = prio
	c.bound |= 1 << line
	arm.SetPriority(irq, hardwarePriority(prio))
	arm.EnableIRQ(irq)
}

// Pend sets the pending bit of the line's IRQ
func (c *NVIC) Pend(line Line) {
	irq := c.irq[line]
	arm.NVIC.ISPR[irq>>5].Set(1 << (irq & 0x1F))
}

// Raise disables every bound line with priority at or below ceiling
func (c *NVIC) Raise(ceiling Priority) MaskState {
	state := disableInterrupts()
	prev := c.masked
	for l := Line(0); l < MaxLines; l++ {
		bit := uint32(1) << l
		if c.bound&bit == 0 || c.masked&bit != 0 || c.prio[l] > ceiling {
			continue
		}
		irq := c.irq[l]
		arm.NVIC.ICER[irq>>5].Set(1 << (irq & 0x1F))
		c.masked |= bit
	}
	arm.Asm("dsb 0xF")
	arm.Asm("isb 0xF")
	restoreInterrupts(state)
	return MaskState(prev)
}

// Restore re-enables the lines disabled since the matching Raise. Lines
// pended meanwhile fire as soon as they are re-enabled.
func (c *NVIC) Restore(s MaskState) {
	state := disableInterrupts()
	release := c.masked &^ uint32(s)
	for l := Line(0); l < MaxLines; l++ {
		if release&(1<<l) == 0 {
			continue
		}
		irq := c.irq[l]
		arm.NVIC.ISER[irq>>5].Set(1 << (irq & 0x1F))
	}
	c.masked = uint32(s)
	restoreInterrupts(state)
}

// hardwarePriority maps a scheduler priority to an NVIC priority byte.
// Larger scheduler priorities are more urgent, the NVIC is the other way
// round.
func hardwarePriority(p Priority) uint32 {
	if p >= HardwareLevels {
		p = HardwareLevels - 1
	}
	return uint32(HardwareLevels-1-p) << 6
}

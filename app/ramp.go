package app

import (
	"cadence/core"
	"cadence/hal"
)

type rampState struct {
	val uint32
	max uint32
	up  bool
}

// next reverses at either end of the range and clamps the step so the duty
// never leaves [0, max]
func (r *rampState) next(step uint32) uint32 {
	if r.val >= r.max {
		r.up = false
	} else if r.val == 0 {
		r.up = true
	}

	if r.up {
		if r.max-r.val < step {
			r.val = r.max
		} else {
			r.val += step
		}
	} else {
		if r.val < step {
			r.val = 0
		} else {
			r.val -= step
		}
	}
	return r.val
}

// runRamp moves the PWM duty one step along a triangle wave
func (a *App) runRamp(cx *core.Context) error {
	val := a.ramp.next(a.cfg.PWMStep)
	if err := a.per.PWM.SetDutyCycle(a.cfg.PWMPin, hal.PWMValue(val)); err != nil {
		return hal.Wrap("set duty", err)
	}

	a.activity.Lock(cx, func(act *Activity) { act.Ramps++ })
	return cx.SpawnAfter(PWMChange, a.cfg.RampPeriod, 0)
}

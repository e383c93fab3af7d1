package app

import (
	"cadence/core"
	"cadence/hal"
)

type blinkState struct {
	state bool
}

// runBlink toggles the LED and re-arms itself one period later
func (a *App) runBlink(cx *core.Context) error {
	v := !a.blink.state
	if err := a.per.GPIO.SetPin(a.cfg.LEDPin, v); err != nil {
		return hal.Wrap("set led", err)
	}
	a.blink.state = v

	a.activity.Lock(cx, func(act *Activity) { act.Blinks++ })
	return cx.SpawnAfter(Blink, a.cfg.BlinkPeriod, 0)
}

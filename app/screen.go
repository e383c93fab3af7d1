package app

import (
	"cadence/core"
	"cadence/hal"
)

// runScreenClear blanks the display once
func (a *App) runScreenClear(cx *core.Context) error {
	a.per.Display.ClearBuffer()
	if err := a.per.Display.Display(); err != nil {
		return hal.Wrap("flush display", err)
	}

	a.activity.Lock(cx, func(act *Activity) { act.Clears++ })
	return nil
}

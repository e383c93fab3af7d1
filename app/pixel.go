package app

import (
	"errors"

	"cadence/core"
	"cadence/hal"
)

type pixelState struct {
	hue uint8
}

// wheel maps a position on a 256 step colour wheel to RGB
func wheel(pos uint8) (r, g, b uint8) {
	switch {
	case pos < 85:
		return 255 - pos*3, pos * 3, 0
	case pos < 170:
		pos -= 85
		return 0, 255 - pos*3, pos * 3
	default:
		pos -= 170
		return pos * 3, 0, 255 - pos*3
	}
}

// runPixelCycle advances the pixel along the colour wheel. The LED level
// picks the brightness, so the pixel dims in step with the blink.
func (a *App) runPixelCycle(cx *core.Context) error {
	var blinks uint32
	a.activity.Lock(cx, func(act *Activity) {
		act.Frames++
		blinks = act.Blinks
	})

	r, g, b := wheel(a.pixel.hue)
	if blinks%2 == 0 {
		r, g, b = r/4, g/4, b/4
	}
	if err := a.per.Pixels.PutRGB(r, g, b); err != nil {
		// The frame is dropped; the same colour is tried next period
		return errors.Join(hal.Wrap("put pixel", err), cx.SpawnAfter(PixelCycle, a.cfg.PixelPeriod, 0))
	}
	a.pixel.hue += 8

	return cx.SpawnAfter(PixelCycle, a.cfg.PixelPeriod, 0)
}

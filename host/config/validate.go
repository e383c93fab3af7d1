package config

import (
	"fmt"
	"time"
)

// maxStep bounds the simulated time advanced between two drains of the
// firmware's timing ring
const maxStep = 10 * time.Millisecond

// Validate checks a scenario without modifying it
func Validate(sc *Scenario) error {
	if sc.Duration < 0 || sc.Step < 0 {
		return fmt.Errorf("scenario %q: negative duration", sc.Name)
	}
	if sc.Step > maxStep {
		return fmt.Errorf("scenario %q: step %v above %v", sc.Name, sc.Step, maxStep)
	}
	if sc.Step < time.Microsecond {
		return fmt.Errorf("scenario %q: step below one timer tick", sc.Name)
	}
	if sc.QueueCapacity < 4 || sc.QueueCapacity > 255 {
		return fmt.Errorf("scenario %q: queue_capacity must be 4 to 255", sc.Name)
	}

	periods := map[string]time.Duration{
		"blink_period":       sc.Tasks.BlinkPeriod,
		"ramp_period":        sc.Tasks.RampPeriod,
		"screen_clear_delay": sc.Tasks.ScreenClearDelay,
		"pixel_period":       sc.Tasks.PixelPeriod,
	}
	for name, d := range periods {
		if d < time.Microsecond {
			return fmt.Errorf("scenario %q: %s below one timer tick", sc.Name, name)
		}
		// Spawn delays are 32-bit microsecond counts
		if d.Microseconds() > 1<<31-1 {
			return fmt.Errorf("scenario %q: %s above half the counter period", sc.Name, name)
		}
	}

	for i, f := range sc.Faults {
		switch f.Device {
		case DeviceLED, DevicePWM:
		case DeviceDisplay:
			if !sc.Display {
				return fmt.Errorf("scenario %q: fault %d targets the display, which is disabled", sc.Name, i)
			}
		case DevicePixels:
			if !sc.Pixels {
				return fmt.Errorf("scenario %q: fault %d targets the pixels, which are disabled", sc.Name, i)
			}
		default:
			return fmt.Errorf("scenario %q: fault %d: unknown device %q", sc.Name, i, f.Device)
		}
		if f.At < 0 {
			return fmt.Errorf("scenario %q: fault %d: negative time", sc.Name, i)
		}
	}
	return nil
}

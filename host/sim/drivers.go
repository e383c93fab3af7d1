package sim

import (
	"errors"

	"cadence/core"
	"cadence/hal"
	"cadence/host/config"
)

var errInjected = errors.New("injected fault")

// faults reports whether a device has failed by the current instant
type faults struct {
	now  func() core.Instant
	from map[string]core.Instant
}

func (f *faults) check(device string) error {
	at, ok := f.from[device]
	if ok && !f.now().Before(at) {
		return errInjected
	}
	return nil
}

type simGPIO struct {
	faults  *faults
	level   bool
	toggles int
}

func (g *simGPIO) ConfigureOutput(pin hal.Pin) error {
	return nil
}

func (g *simGPIO) SetPin(pin hal.Pin, value bool) error {
	if err := g.faults.check(config.DeviceLED); err != nil {
		return err
	}
	if value != g.level {
		g.toggles++
	}
	g.level = value
	return nil
}

type simPWM struct {
	faults  *faults
	duty    hal.PWMValue
	min     hal.PWMValue
	max     hal.PWMValue
	updates int
}

func newSimPWM(f *faults) *simPWM {
	return &simPWM{faults: f, min: ^hal.PWMValue(0)}
}

func (p *simPWM) ConfigureHardwarePWM(pin hal.Pin, periodNs uint32) (uint32, error) {
	return periodNs, nil
}

func (p *simPWM) SetDutyCycle(pin hal.Pin, value hal.PWMValue) error {
	if err := p.faults.check(config.DevicePWM); err != nil {
		return err
	}
	p.duty = value
	p.updates++
	if value < p.min {
		p.min = value
	}
	if value > p.max {
		p.max = value
	}
	return nil
}

// GetMaxValue matches the 16-bit duty range of the RP2040 PWM slices
func (p *simPWM) GetMaxValue() uint32 {
	return 0xFFFF
}

func (p *simPWM) DisablePWM(pin hal.Pin) error {
	return nil
}

type simDisplay struct {
	faults  *faults
	flushes int
}

func (d *simDisplay) ClearBuffer() {}

func (d *simDisplay) Display() error {
	if err := d.faults.check(config.DeviceDisplay); err != nil {
		return err
	}
	d.flushes++
	return nil
}

type simPixels struct {
	faults *faults
	frames int
	last   [3]uint8
}

func (p *simPixels) PutRGB(r, g, b uint8) error {
	if err := p.faults.check(config.DevicePixels); err != nil {
		return err
	}
	p.frames++
	p.last = [3]uint8{r, g, b}
	return nil
}

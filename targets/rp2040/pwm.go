//go:build rp2040

package main

import (
	"machine"

	"cadence/hal"
)

// PWMMax is the logical full-scale duty value. Hardware values are scaled
// to the slice's Top.
const PWMMax = 0xFFFF

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

type pwmOutput struct {
	slice   pwmPeripheral
	channel uint8
}

// RP2040PWMDriver implements hal.PWMDriver on the 8 hardware PWM slices.
// Two pins on one slice share its period.
type RP2040PWMDriver struct {
	// Key: slice number (0-7), Value: configured period in nanoseconds
	periods map[uint8]uint32

	outputs map[hal.Pin]pwmOutput
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		periods: make(map[uint8]uint32),
		outputs: make(map[hal.Pin]pwmOutput),
	}
}

// GetMaxValue returns the logical full-scale duty value
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return PWMMax
}

// ConfigureHardwarePWM routes pin to its PWM slice with the given period.
// GPIO N is on slice (N >> 1) & 7, channel A for even pins and B for odd.
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin hal.Pin, periodNs uint32) (uint32, error) {
	if pin > 29 {
		return 0, errBadPin
	}
	sliceNum := uint8((pin >> 1) & 0x7)
	slice := pwmSlice(sliceNum)

	if existing, ok := d.periods[sliceNum]; !ok || existing != periodNs {
		if err := slice.Configure(machine.PWMConfig{Period: uint64(periodNs)}); err != nil {
			return 0, err
		}
		d.periods[sliceNum] = periodNs
	}

	channel, err := slice.Channel(machine.Pin(pin))
	if err != nil {
		return 0, err
	}
	d.outputs[pin] = pwmOutput{slice: slice, channel: channel}

	return periodNs, nil
}

// SetDutyCycle sets the duty of a configured pin, 0 to PWMMax
func (d *RP2040PWMDriver) SetDutyCycle(pin hal.Pin, value hal.PWMValue) error {
	out, ok := d.outputs[pin]
	if !ok {
		return errPinNotConfigured
	}
	if value > PWMMax {
		value = PWMMax
	}

	top := out.slice.Top()
	out.slice.Set(out.channel, uint32(uint64(value)*uint64(top)/PWMMax))
	return nil
}

// DisablePWM drives the output low and forgets the pin. TinyGo has no way
// to hand the pin back to the GPIO function.
func (d *RP2040PWMDriver) DisablePWM(pin hal.Pin) error {
	out, ok := d.outputs[pin]
	if !ok {
		return nil
	}
	out.slice.Set(out.channel, 0)
	delete(d.outputs, pin)
	return nil
}

// pwmSlice returns machine.PWM0-PWM7 through the pwmPeripheral interface
func pwmSlice(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return machine.PWM0
	}
}

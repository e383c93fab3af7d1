package hal

// PWMValue is a duty cycle between 0 and GetMaxValue()
type PWMValue uint32

// PWMDriver drives hardware PWM outputs
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for PWM output with the given
	// period in nanoseconds. It returns the period actually used, which may
	// be adjusted for hardware constraints.
	ConfigureHardwarePWM(pin Pin, periodNs uint32) (uint32, error)

	// SetDutyCycle sets the duty cycle for a pin
	// value: 0 (fully off) to GetMaxValue() (fully on)
	SetDutyCycle(pin Pin, value PWMValue) error

	// GetMaxValue returns the duty value for a fully on output
	GetMaxValue() uint32

	// DisablePWM stops PWM output on a pin
	DisablePWM(pin Pin) error
}

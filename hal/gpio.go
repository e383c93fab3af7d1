// Package hal declares the peripheral drivers task bodies talk to.
// Target code provides the implementations; tests use mocks.
package hal

// Pin identifies a hardware GPIO pin number
type Pin uint32

// GPIODriver drives digital outputs
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin Pin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin Pin, value bool) error
}

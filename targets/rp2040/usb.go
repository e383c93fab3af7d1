//go:build rp2040

package main

import (
	"machine"
)

// InitUSB configures machine.Serial, which is USB CDC on the RP2040.
// The descriptors are set by TinyGo's runtime.
func InitUSB() error {
	return machine.Serial.Configure(machine.UARTConfig{})
}

// USBWriteBytes writes data to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// usbWriter adapts USBWriteBytes to io.Writer
type usbWriter struct{}

func (usbWriter) Write(data []byte) (int, error) {
	return USBWriteBytes(data)
}

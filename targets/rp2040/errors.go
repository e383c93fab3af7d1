//go:build rp2040

package main

import "errors"

var (
	errBadPin           = errors.New("no such GPIO")
	errPinNotConfigured = errors.New("pin not configured")
	errPixelBusy        = errors.New("pixel FIFO full")
	errPixelSMBusy      = errors.New("PIO0 state machine in use")
)

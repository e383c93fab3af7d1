//go:build rp2040

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"
)

const (
	pixelPin = machine.GPIO16
	pixelSM  = 0
)

// pixelStrip drives a WS2812B chain from PIO0 state machine 0
type pixelStrip struct {
	ws *piolib.WS2812B
}

func initPixels(pin machine.Pin) (*pixelStrip, error) {
	sm := rp2pio.PIO0.StateMachine(pixelSM)
	if !sm.TryClaim() {
		return nil, errPixelSMBusy
	}
	ws, err := piolib.NewWS2812B(sm, pin)
	if err != nil {
		return nil, err
	}
	return &pixelStrip{ws: ws}, nil
}

// PutRGB queues one pixel. It never blocks; a full FIFO is reported so the
// task body can drop the frame.
func (p *pixelStrip) PutRGB(r, g, b uint8) error {
	if p.ws.IsQueueFull() {
		return errPixelBusy
	}
	p.ws.PutRGB(r, g, b)
	return nil
}

//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

// SSD1306 on I2C0, GP4 SDA / GP5 SCL
const (
	displayAddress = 0x3C
	displayWidth   = 128
	displayHeight  = 64
)

// initDisplay brings up the OLED with a blank frame. The returned device
// satisfies hal.Display through its ClearBuffer and Display methods.
func initDisplay() (*ssd1306.Device, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GPIO4,
		SCL:       machine.GPIO5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		return nil, err
	}

	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{
		Width:    displayWidth,
		Height:   displayHeight,
		Address:  displayAddress,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	dev.ClearBuffer()
	if err := dev.Display(); err != nil {
		return nil, err
	}
	return &dev, nil
}

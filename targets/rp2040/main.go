//go:build rp2040

package main

import (
	"device/arm"
	"machine"
	"time"

	"cadence/app"
	"cadence/core"
	"cadence/hal"
)

// Stats go out roughly once a second of idle time
const statsInterval = 1000000

var trace *traceSink

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Trace output is best effort; the tasks run without a host
	_ = InitUSB()
	trace = newTraceSink()
	core.SetDebugWriter(trace.log)
	core.SetDebugEnabled(true)

	gpio := NewRPGPIODriver()
	per := app.Peripherals{
		GPIO: gpio,
		PWM:  NewRP2040PWMDriver(),
	}
	if disp, err := initDisplay(); err != nil {
		core.DebugPrintln("display: " + err.Error())
	} else {
		per.Display = disp
	}
	if pix, err := initPixels(pixelPin); err != nil {
		core.DebugPrintln("pixels: " + err.Error())
	} else {
		per.Pixels = pix
	}

	cfg := app.DefaultConfig()
	a := app.New(cfg, per)

	InitClock()
	nvic := core.NewNVIC()
	s, err := core.NewScheduler(core.Config{
		Tasks:         a.Tasks(),
		Handler:       a.Handle,
		Counter:       rpCounter{},
		Controller:    nvic,
		TimerLine:     lineTimer,
		OverflowLine:  lineOverflow,
		DispatchLines: dispatchLines[:app.Levels],
	})
	if err != nil {
		halt(gpio, cfg.LEDPin, err)
	}
	sched = s
	bindInterrupts(nvic)

	if err := a.Init(s); err != nil {
		halt(gpio, cfg.LEDPin, err)
	}
	if err := s.Start(); err != nil {
		halt(gpio, cfg.LEDPin, err)
	}
	core.DebugPrintln("scheduler started")

	lastStats := s.Now()
	for {
		core.FlushDebug()
		core.DrainTiming(trace.timing)
		if now := s.Now(); now.Sub(lastStats) >= core.Micros(statsInterval) {
			trace.stats(s.Stats())
			lastStats = now
		}
		trace.flush()

		// Sleep until the next interrupt; every task runs in a handler
		arm.Asm("wfi")
	}
}

// halt reports err and blinks the LED fast forever. The scheduler is not
// running, so this busy-waits in thread mode.
func halt(gpio *RPGPIODriver, led hal.Pin, err error) {
	core.DebugPrintln("init failed: " + err.Error())
	core.DumpTimingRing()
	trace.flush()

	_ = gpio.ConfigureOutput(led)
	on := false
	for {
		on = !on
		_ = gpio.SetPin(led, on)
		time.Sleep(100 * time.Millisecond)
	}
}

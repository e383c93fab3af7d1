// Package app holds the firmware's task bodies: an LED blink, a PWM duty
// ramp, a one-shot display clear and an addressable pixel colour cycle.
package app

import (
	"errors"

	"cadence/core"
	"cadence/hal"
)

// Task kinds, in task table order
const (
	Blink core.TaskID = iota
	PWMChange
	ScreenClear
	PixelCycle
)

// Levels is the number of task priority levels the app needs
const Levels = 2

// Config holds the pins and timing of the app
type Config struct {
	LEDPin hal.Pin
	PWMPin hal.Pin

	PWMPeriodNs uint32 // PWM carrier period
	PWMStep     uint32 // duty change per ramp step

	BlinkPeriod      core.Duration
	RampPeriod       core.Duration
	ScreenClearDelay core.Duration
	PixelPeriod      core.Duration
}

// DefaultConfig returns the board defaults: 1 s blink,
// 0xF duty step every 700 us on a 500 Hz carrier, display cleared 1.5 s
// after boot.
func DefaultConfig() Config {
	return Config{
		LEDPin:           25,
		PWMPin:           15,
		PWMPeriodNs:      2000000,
		PWMStep:          0xF,
		BlinkPeriod:      core.Micros(1000000),
		RampPeriod:       core.Micros(700),
		ScreenClearDelay: core.Millis(1500),
		PixelPeriod:      core.Millis(100),
	}
}

// Peripherals are the drivers the task bodies use. Display and Pixels are
// optional; their tasks are left out of the initial spawns when nil.
type Peripherals struct {
	GPIO    hal.GPIODriver
	PWM     hal.PWMDriver
	Display hal.Display
	Pixels  hal.PixelStrip
}

// Activity counts task runs. It is shared by every task body.
type Activity struct {
	Blinks uint32
	Ramps  uint32
	Clears uint32
	Frames uint32
}

// App owns the task-local state of every task and the shared activity cell
type App struct {
	cfg      Config
	per      Peripherals
	activity *core.Shared[Activity]

	blink blinkState
	ramp  rampState
	pixel pixelState
}

// New creates the app. Nothing touches the hardware until Init.
func New(cfg Config, per Peripherals) *App {
	return &App{
		cfg:      cfg,
		per:      per,
		activity: core.NewShared("activity", Activity{}),
	}
}

// Tasks returns the task table for core.NewScheduler
func (a *App) Tasks() []core.Task {
	shared := []core.Resource{a.activity}
	return []core.Task{
		Blink:       {Name: "blink", Priority: 1, Shared: shared},
		PWMChange:   {Name: "pwm_change", Priority: 2, Shared: shared},
		ScreenClear: {Name: "screen_clear", Priority: 1, Shared: shared},
		PixelCycle:  {Name: "pixel_cycle", Priority: 1, Shared: shared},
	}
}

// Handle is the scheduler's Handler, dispatching on the task kind
func (a *App) Handle(cx *core.Context) error {
	switch cx.Task {
	case Blink:
		return a.runBlink(cx)
	case PWMChange:
		return a.runRamp(cx)
	case ScreenClear:
		return a.runScreenClear(cx)
	case PixelCycle:
		return a.runPixelCycle(cx)
	default:
		return core.ErrUnknownTask
	}
}

// Init configures the peripherals and issues the initial spawns. It runs
// in thread mode before Scheduler.Start.
func (a *App) Init(s *core.Scheduler) error {
	if a.per.GPIO == nil || a.per.PWM == nil {
		return errors.New("app: GPIO and PWM drivers are required")
	}

	if err := a.per.GPIO.ConfigureOutput(a.cfg.LEDPin); err != nil {
		return hal.Wrap("configure led", err)
	}
	if err := a.per.GPIO.SetPin(a.cfg.LEDPin, true); err != nil {
		return hal.Wrap("set led", err)
	}

	if _, err := a.per.PWM.ConfigureHardwarePWM(a.cfg.PWMPin, a.cfg.PWMPeriodNs); err != nil {
		return hal.Wrap("configure pwm", err)
	}
	if err := a.per.PWM.SetDutyCycle(a.cfg.PWMPin, 0); err != nil {
		return hal.Wrap("set duty", err)
	}
	a.ramp = rampState{max: a.per.PWM.GetMaxValue(), up: true}

	if err := s.Spawn(Blink, 0); err != nil {
		return err
	}
	if err := s.Spawn(PWMChange, 0); err != nil {
		return err
	}
	if a.per.Display != nil {
		if err := s.SpawnAfter(ScreenClear, a.cfg.ScreenClearDelay, 0); err != nil {
			return err
		}
	}
	if a.per.Pixels != nil {
		if err := s.Spawn(PixelCycle, 0); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot copies the activity counters. cx is the caller's context, the
// idle context from thread mode.
func (a *App) Snapshot(cx *core.Context) Activity {
	var out Activity
	a.activity.Lock(cx, func(v *Activity) { out = *v })
	return out
}

// LEDState returns the level last written to the LED
func (a *App) LEDState() bool {
	return a.blink.state
}

// Duty returns the last duty value written to the PWM output
func (a *App) Duty() uint32 {
	return a.ramp.val
}

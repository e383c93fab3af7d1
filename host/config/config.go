// Package config loads host simulation scenarios from YAML
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulated run of the firmware
type Scenario struct {
	Name string `yaml:"name"`

	// StartCount is the counter value at power-on. Values close to
	// 0xFFFFFFFF exercise the wrap early.
	StartCount uint32 `yaml:"start_count"`

	Duration time.Duration `yaml:"duration"`
	Step     time.Duration `yaml:"step"` // granularity of simulated time

	QueueCapacity int  `yaml:"queue_capacity"`
	Display       bool `yaml:"display"`
	Pixels        bool `yaml:"pixels"`

	Tasks  TaskConfig    `yaml:"tasks"`
	Faults []FaultConfig `yaml:"faults"`
}

// TaskConfig overrides the firmware task timing
type TaskConfig struct {
	BlinkPeriod      time.Duration `yaml:"blink_period"`
	RampPeriod       time.Duration `yaml:"ramp_period"`
	RampStep         uint32        `yaml:"ramp_step"`
	ScreenClearDelay time.Duration `yaml:"screen_clear_delay"`
	PixelPeriod      time.Duration `yaml:"pixel_period"`
}

// FaultConfig makes a peripheral fail from a point in time on
type FaultConfig struct {
	Device string        `yaml:"device"` // led, pwm, display or pixels
	At     time.Duration `yaml:"at"`
}

// Fault devices
const (
	DeviceLED     = "led"
	DevicePWM     = "pwm"
	DeviceDisplay = "display"
	DevicePixels  = "pixels"
)

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return LoadConfig(data)
}

// LoadConfig parses YAML scenario data and fills in defaults
func LoadConfig(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	applyDefaults(&sc)
	return &sc, nil
}

// applyDefaults fills in missing values with the firmware's own settings
func applyDefaults(sc *Scenario) {
	if sc.Name == "" {
		sc.Name = "default"
	}
	if sc.Duration == 0 {
		sc.Duration = 5 * time.Second
	}
	if sc.Step == 0 {
		sc.Step = time.Millisecond
	}
	if sc.QueueCapacity == 0 {
		sc.QueueCapacity = 16
	}

	t := &sc.Tasks
	if t.BlinkPeriod == 0 {
		t.BlinkPeriod = time.Second
	}
	if t.RampPeriod == 0 {
		t.RampPeriod = 700 * time.Microsecond
	}
	if t.RampStep == 0 {
		t.RampStep = 0xF
	}
	if t.ScreenClearDelay == 0 {
		t.ScreenClearDelay = 1500 * time.Millisecond
	}
	if t.PixelPeriod == 0 {
		t.PixelPeriod = 100 * time.Millisecond
	}
}

// Default returns the scenario used when no file is given
func Default() *Scenario {
	sc := &Scenario{Display: true, Pixels: true}
	applyDefaults(sc)
	return sc
}

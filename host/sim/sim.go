// Package sim runs the firmware's scheduler and tasks on a simulated
// counter and interrupt controller
package sim

import (
	"fmt"
	"io"
	"time"

	"cadence/app"
	"cadence/core"
	"cadence/host/config"
	"cadence/protocol"
)

// Lines of the simulated interrupt controller
const (
	lineTimer core.Line = iota
	lineOverflow
	lineDispatch1
	lineDispatch2
)

var dispatchLines = [...]core.Line{lineDispatch1, lineDispatch2}

// Report summarizes one simulated run
type Report struct {
	Scenario string
	Elapsed  time.Duration
	Stats    core.Stats
	Activity app.Activity

	LEDToggles  int
	PWMUpdates  int
	DutyMin     uint32
	DutyMax     uint32
	Flushes     int
	PixelFrames int

	// Events counts timing events by name
	Events map[string]int
	Frames int // trace frames written
}

// Run simulates sc. Trace frames are written to trace when it is not nil,
// in the same format the firmware sends over USB.
func Run(sc *config.Scenario, trace io.Writer) (*Report, error) {
	if err := config.Validate(sc); err != nil {
		return nil, err
	}

	ctrl := core.NewSoftController()
	cnt := core.NewSimCounter(sc.StartCount)

	f := &faults{from: make(map[string]core.Instant)}
	gpio := &simGPIO{faults: f}
	pwm := newSimPWM(f)
	per := app.Peripherals{GPIO: gpio, PWM: pwm}
	var disp *simDisplay
	if sc.Display {
		disp = &simDisplay{faults: f}
		per.Display = disp
	}
	var pix *simPixels
	if sc.Pixels {
		pix = &simPixels{faults: f}
		per.Pixels = pix
	}

	a := app.New(appConfig(sc), per)
	sched, err := core.NewScheduler(core.Config{
		Tasks:         a.Tasks(),
		Handler:       a.Handle,
		QueueCapacity: sc.QueueCapacity,
		Counter:       cnt,
		Controller:    ctrl,
		TimerLine:     lineTimer,
		OverflowLine:  lineOverflow,
		DispatchLines: dispatchLines[:app.Levels],
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	sched.BindSoft(ctrl)
	cnt.Attach(ctrl, lineTimer, lineOverflow)

	boot := sched.Now()
	f.now = sched.Now
	for _, fc := range sc.Faults {
		f.from[fc.Device] = boot.Add(toDuration(fc.At))
	}

	rep := &Report{Scenario: sc.Name, Events: make(map[string]int)}
	out := newTraceOut(trace)

	core.ClearTimingRing()
	core.SetDebugWriter(out.log)
	core.SetDebugEnabled(true)
	defer func() {
		core.SetDebugEnabled(false)
		core.SetDebugWriter(func(string) {})
	}()

	if err := a.Init(sched); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := sched.Start(); err != nil {
		return nil, err
	}
	core.DebugPrintln("scenario " + sc.Name + " started")

	step := uint64(toDuration(sc.Step))
	total := uint64(toDuration(sc.Duration))
	for elapsed := uint64(0); elapsed < total; elapsed += step {
		cnt.Advance(min(step, total-elapsed))
		idle(rep, out)
	}
	if out.err != nil {
		return nil, fmt.Errorf("write trace: %w", out.err)
	}

	rep.Elapsed = time.Duration(sched.Now().Sub(boot).Micros()) * time.Microsecond
	rep.Stats = sched.Stats()
	rep.Activity = a.Snapshot(sched.Idle())
	out.stats(rep.Stats)

	rep.LEDToggles = gpio.toggles
	rep.PWMUpdates = pwm.updates
	rep.DutyMin, rep.DutyMax = uint32(pwm.min), uint32(pwm.max)
	if disp != nil {
		rep.Flushes = disp.flushes
	}
	if pix != nil {
		rep.PixelFrames = pix.frames
	}
	rep.Frames = out.frames
	return rep, out.err
}

// idle does what the firmware's idle loop does between interrupts
func idle(rep *Report, out *traceOut) {
	core.FlushDebug()
	core.DrainTiming(func(evt core.TimingEvent) {
		rep.Events[core.EventName(evt.EventType)]++
		out.timing(evt)
	})
}

func appConfig(sc *config.Scenario) app.Config {
	cfg := app.DefaultConfig()
	cfg.BlinkPeriod = toDuration(sc.Tasks.BlinkPeriod)
	cfg.RampPeriod = toDuration(sc.Tasks.RampPeriod)
	cfg.PWMStep = sc.Tasks.RampStep
	cfg.ScreenClearDelay = toDuration(sc.Tasks.ScreenClearDelay)
	cfg.PixelPeriod = toDuration(sc.Tasks.PixelPeriod)
	return cfg
}

func toDuration(d time.Duration) core.Duration {
	return core.Duration(d.Microseconds()) * core.Duration(core.TimerFreq/1000000)
}

// traceOut encodes records the way the firmware's trace sink does
type traceOut struct {
	w      io.Writer
	buf    *protocol.ScratchOutput
	tw     *protocol.TraceWriter
	frames int
	err    error
}

func newTraceOut(w io.Writer) *traceOut {
	buf := protocol.NewScratchOutput()
	return &traceOut{w: w, buf: buf, tw: protocol.NewTraceWriter(buf)}
}

func (t *traceOut) log(msg string) {
	t.emit(func() { t.tw.WriteLog(msg) })
}

func (t *traceOut) timing(evt core.TimingEvent) {
	t.emit(func() {
		t.tw.WriteTiming(protocol.TimingRecord{
			Event:  evt.EventType,
			Task:   evt.Task,
			Clock:  evt.Clock,
			Value1: evt.Value1,
			Value2: evt.Value2,
		})
	})
}

func (t *traceOut) stats(s core.Stats) {
	t.emit(func() { t.tw.WriteStats(statsRecord(s)) })
}

func (t *traceOut) emit(write func()) {
	if t.w == nil || t.err != nil {
		return
	}
	t.buf.Reset()
	write()
	if _, err := t.w.Write(t.buf.Result()); err != nil {
		t.err = err
		return
	}
	t.frames++
}

func statsRecord(s core.Stats) protocol.StatsRecord {
	late := s.MaxLate
	if late > 0xFFFFFFFF {
		late = 0xFFFFFFFF
	}
	return protocol.StatsRecord{
		Spawned:   s.Spawned,
		Rejected:  s.Rejected,
		Fired:     s.Fired,
		Completed: s.Completed,
		Errors:    s.Errors,
		Overflows: s.Overflows,
		MaxLate:   uint32(late),
	}
}

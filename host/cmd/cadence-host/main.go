package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"cadence/host/config"
	"cadence/host/serial"
	"cadence/host/sim"
	"cadence/host/trace"
	"cadence/protocol"
)

var (
	scenarioPath string
	tracePath    string
	device       string
	baud         int
	inputPath    string
	showTiming   bool

	simFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "scenario YAML file (default: built-in scenario)",
			Destination: &scenarioPath,
		},
		cli.StringFlag{
			Name:        "trace, t",
			Usage:       "write the trace stream to this file",
			Destination: &tracePath,
		},
	}

	traceFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "device, d",
			Value:       "/dev/ttyACM0",
			Usage:       "serial device the firmware writes its trace to",
			Destination: &device,
		},
		cli.IntFlag{
			Name:        "baud, b",
			Value:       115200,
			Usage:       "baud rate (ignored for USB CDC)",
			Destination: &baud,
		},
		cli.StringFlag{
			Name:        "file, f",
			Usage:       "decode a capture file instead of a serial port",
			Destination: &inputPath,
		},
		cli.BoolTFlag{
			Name:        "timing",
			Usage:       "print scheduler timing events (default: true)",
			Destination: &showTiming,
		},
	}
)

func main() {
	app := cli.App{
		Name:      "cadence-host",
		HelpName:  "cadence-host",
		Usage:     "simulate the cadence firmware and read its trace",
		Version:   protocol.Version,
		UsageText: "cadence-host <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:    "sim",
				Aliases: []string{"s"},
				Usage:   "run the firmware tasks on a simulated timer",
				Action:  runSim,
				Flags:   simFlags,
			},
			{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "decode the trace stream from a device or capture",
				Action:  runTrace,
				Flags:   traceFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSim(ctx *cli.Context) error {
	sc := config.Default()
	if scenarioPath != "" {
		var err error
		if sc, err = config.Load(scenarioPath); err != nil {
			return err
		}
	}

	var out io.Writer
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rep, err := sim.Run(sc, out)
	if err != nil {
		return err
	}

	printReport(rep)
	return nil
}

func printReport(rep *sim.Report) {
	st := rep.Stats
	fmt.Printf("scenario %s: %v simulated\n", rep.Scenario, rep.Elapsed)
	fmt.Printf("  spawned=%d rejected=%d fired=%d completed=%d errors=%d overflows=%d\n",
		st.Spawned, st.Rejected, st.Fired, st.Completed, st.Errors, st.Overflows)
	fmt.Printf("  max lateness %d ticks\n", st.MaxLate)
	if st.LastError != nil {
		fmt.Printf("  last error: %v\n", st.LastError)
	}
	fmt.Printf("  blink=%d ramp=%d clear=%d pixel=%d\n",
		rep.Activity.Blinks, rep.Activity.Ramps, rep.Activity.Clears, rep.Activity.Frames)
	fmt.Printf("  led toggles=%d pwm updates=%d duty %d..%d\n",
		rep.LEDToggles, rep.PWMUpdates, rep.DutyMin, rep.DutyMax)
	for name, n := range rep.Events {
		fmt.Printf("  %-14s %d\n", name, n)
	}
	if rep.Frames > 0 {
		fmt.Printf("  %d trace frames written\n", rep.Frames)
	}
}

func runTrace(ctx *cli.Context) error {
	show := func(rec protocol.Record) {
		if rec.Type == protocol.RecordTiming && !showTiming {
			return
		}
		fmt.Println(trace.Format(rec))
	}

	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open capture: %w", err)
		}
		defer f.Close()

		stats, err := trace.Decode(f, show)
		if err != nil {
			return err
		}
		log.Printf("%d frames, %d resyncs, %d lost", stats.Frames, stats.Resyncs, stats.Lost)
		return nil
	}

	port, err := serial.Open(&serial.Config{Device: device, Baud: baud, ReadTimeout: 100})
	if err != nil {
		return err
	}
	if err := port.Flush(); err != nil {
		log.Printf("flush %s: %v", device, err)
	}

	r := trace.NewReader(port)
	defer r.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	for {
		select {
		case rec, ok := <-r.Records():
			if !ok {
				return r.Err()
			}
			show(rec)
		case <-interrupt:
			st := r.Stats()
			log.Printf("%d frames, %d resyncs, %d lost", st.Frames, st.Resyncs, st.Lost)
			return nil
		}
	}
}

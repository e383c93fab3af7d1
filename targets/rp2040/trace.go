//go:build rp2040

package main

import (
	"cadence/core"
	"cadence/protocol"
)

// Frames are dropped after this many failed writes in a row until a write
// succeeds again, so an unplugged host cannot stall the idle loop.
const maxWriteFailures = 10

// traceSink frames log lines, timing events and stats into the scratch
// buffer and pushes them to USB. It runs in thread mode only.
type traceSink struct {
	out *protocol.ScratchOutput
	tw  *protocol.TraceWriter

	failures uint32
	dropped  uint32 // buffers discarded unsent
}

func newTraceSink() *traceSink {
	out := protocol.NewScratchOutput()
	return &traceSink{out: out, tw: protocol.NewTraceWriter(out)}
}

// log is the core debug writer
func (t *traceSink) log(msg string) {
	t.reserve()
	t.tw.WriteLog(msg)
}

func (t *traceSink) timing(evt core.TimingEvent) {
	t.reserve()
	t.tw.WriteTiming(protocol.TimingRecord{
		Event:  evt.EventType,
		Task:   evt.Task,
		Clock:  evt.Clock,
		Value1: evt.Value1,
		Value2: evt.Value2,
	})
}

func (t *traceSink) stats(s core.Stats) {
	late := s.MaxLate
	if late > 0xFFFFFFFF {
		late = 0xFFFFFFFF
	}
	t.reserve()
	t.tw.WriteStats(protocol.StatsRecord{
		Spawned:   s.Spawned,
		Rejected:  s.Rejected,
		Fired:     s.Fired,
		Completed: s.Completed,
		Errors:    s.Errors,
		Overflows: s.Overflows,
		MaxLate:   uint32(late),
	})
}

// reserve makes room for one more frame, flushing if needed
func (t *traceSink) reserve() {
	if t.out.Free() < protocol.MessageLengthMax {
		t.flush()
	}
	if t.out.Free() < protocol.MessageLengthMax {
		t.dropped++
		t.out.Reset()
	}
}

// flush writes buffered frames to USB. A failed write keeps the unsent
// tail for the next flush, so no byte goes out twice.
func (t *traceSink) flush() {
	if len(t.out.Result()) == 0 {
		return
	}
	if _, err := t.out.WriteTo(usbWriter{}); err != nil {
		t.failures++
		if t.failures > maxWriteFailures {
			t.failures = 0
			t.dropped++
			t.out.Reset()
		}
		return
	}
	t.failures = 0
}

package trace

import (
	"fmt"

	"cadence/core"
	"cadence/protocol"
)

// Format renders one record as a log line
func Format(rec protocol.Record) string {
	switch rec.Type {
	case protocol.RecordLog:
		return "log    " + rec.Log
	case protocol.RecordTiming:
		t := rec.Timing
		return "timing " + core.FormatTiming(core.TimingEvent{
			EventType: t.Event,
			Task:      t.Task,
			Clock:     t.Clock,
			Value1:    t.Value1,
			Value2:    t.Value2,
		})
	case protocol.RecordStats:
		s := rec.Stats
		return fmt.Sprintf("stats  spawned=%d rejected=%d fired=%d completed=%d errors=%d overflows=%d max_late=%dus",
			s.Spawned, s.Rejected, s.Fired, s.Completed, s.Errors, s.Overflows, s.MaxLate)
	default:
		return fmt.Sprintf("record type=%d", rec.Type)
	}
}

package trace

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"cadence/core"
	"cadence/protocol"
)

func encode(fn func(w *protocol.TraceWriter)) []byte {
	var out []byte
	buf := protocol.NewScratchOutput()
	w := protocol.NewTraceWriter(buf)
	fn(w)
	out = append(out, buf.Result()...)
	return out
}

func TestDecodeCapture(t *testing.T) {
	var stream []byte
	for i := 0; i < 40; i++ {
		stream = append(stream, encode(func(w *protocol.TraceWriter) {
			w.WriteTiming(protocol.TimingRecord{Event: core.EvtTaskStart, Task: 1, Clock: uint32(i)})
		})...)
	}

	var clocks []uint32
	stats, err := Decode(bytes.NewReader(stream), func(r protocol.Record) {
		clocks = append(clocks, r.Timing.Clock)
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(clocks) != 40 || clocks[39] != 39 {
		t.Errorf("Expected 40 records in order, got %v", clocks)
	}
	if stats.Frames != 40 {
		t.Errorf("Expected 40 frames, got %d", stats.Frames)
	}
}

// pipePort adapts an io.Pipe to io.ReadCloser with a Close that unblocks Read
type pipePort struct {
	*io.PipeReader
}

func TestReaderStreamsRecords(t *testing.T) {
	pr, pw := io.Pipe()
	r := NewReader(pipePort{pr})

	frames := encode(func(w *protocol.TraceWriter) {
		w.WriteLog("boot")
		w.WriteStats(protocol.StatsRecord{Spawned: 3})
	})
	go func() {
		// Split mid-frame to exercise reassembly
		pw.Write(frames[:3])
		pw.Write(frames[3:])
		pw.Close()
	}()

	var got []protocol.Record
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case rec, ok := <-r.Records():
			if !ok {
				t.Fatalf("Records closed after %d records", len(got))
			}
			got = append(got, rec)
		case <-timeout:
			t.Fatal("Timed out waiting for records")
		}
	}

	if got[0].Log != "boot" || got[1].Stats.Spawned != 3 {
		t.Errorf("Unexpected records %+v", got)
	}
	if err := r.Err(); err != nil {
		t.Errorf("Unexpected read error: %v", err)
	}
	if st := r.Stats(); st.Frames != 2 || st.Lost != 0 {
		t.Errorf("Unexpected decoder stats %+v", st)
	}
	r.Close()
}

func TestFormat(t *testing.T) {
	line := Format(protocol.Record{
		Type:   protocol.RecordTiming,
		Timing: protocol.TimingRecord{Event: core.EvtOverflow, Task: 0xFF, Clock: 7, Value1: 1},
	})
	if !strings.Contains(line, "OVERFLOW task=- clock=7 v1=1") {
		t.Errorf("Unexpected line %q", line)
	}

	line = Format(protocol.Record{Type: protocol.RecordStats, Stats: protocol.StatsRecord{Errors: 2}})
	if !strings.Contains(line, "errors=2") {
		t.Errorf("Unexpected line %q", line)
	}
}

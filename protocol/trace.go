package protocol

import (
	"errors"
	"unicode/utf8"
)

// Record types
const (
	RecordLog    = 1 // string
	RecordTiming = 2 // event, task, clock, v1, v2
	RecordStats  = 3 // scheduler counters
)

var ErrUnknownRecord = errors.New("unknown trace record")

// TimingRecord is one scheduler event
type TimingRecord struct {
	Event  uint8
	Task   uint8
	Clock  uint32
	Value1 uint32
	Value2 uint32
}

// StatsRecord is a snapshot of the scheduler counters
type StatsRecord struct {
	Spawned   uint32
	Rejected  uint32
	Fired     uint32
	Completed uint32
	Errors    uint32
	Overflows uint32
	MaxLate   uint32
}

// Record is one decoded trace record. Only the field matching Type is set.
type Record struct {
	Type     uint8
	Sequence uint8
	Log      string
	Timing   TimingRecord
	Stats    StatsRecord
}

// TraceWriter frames trace records into an OutputBuffer. It is not safe
// for concurrent use; firmware calls it from the idle loop only.
type TraceWriter struct {
	output OutputBuffer
	seq    uint8
}

// NewTraceWriter creates a writer appending frames to output
func NewTraceWriter(output OutputBuffer) *TraceWriter {
	return &TraceWriter{output: output}
}

// EncodeFrame writes one frame whose payload is produced by frameData
func (w *TraceWriter) EncodeFrame(frameData func(output OutputBuffer)) {
	cursor := w.output.CurPosition()

	// Length is patched once the payload size is known
	w.output.Output([]byte{0, MessageDest | w.seq})
	frameData(w.output)

	changed := len(w.output.DataSince(cursor))
	w.output.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(w.output.DataSince(cursor))
	w.output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	w.seq = (w.seq + 1) & MessageSeqMask
}

// WriteLog frames a log line, truncated to fit one frame
func (w *TraceWriter) WriteLog(msg string) {
	// Type byte plus a length prefix of up to two bytes
	if max := MessagePayloadMax - 3; len(msg) > max {
		// Cut on a rune boundary
		for max > 0 && !utf8.RuneStart(msg[max]) {
			max--
		}
		msg = msg[:max]
	}
	w.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, RecordLog)
		EncodeVLQString(output, msg)
	})
}

// WriteTiming frames one scheduler event
func (w *TraceWriter) WriteTiming(r TimingRecord) {
	w.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, RecordTiming)
		EncodeVLQUint(output, uint32(r.Event))
		EncodeVLQUint(output, uint32(r.Task))
		EncodeVLQUint(output, r.Clock)
		EncodeVLQUint(output, r.Value1)
		EncodeVLQUint(output, r.Value2)
	})
}

// WriteStats frames a counter snapshot
func (w *TraceWriter) WriteStats(s StatsRecord) {
	w.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, RecordStats)
		EncodeVLQUint(output, s.Spawned)
		EncodeVLQUint(output, s.Rejected)
		EncodeVLQUint(output, s.Fired)
		EncodeVLQUint(output, s.Completed)
		EncodeVLQUint(output, s.Errors)
		EncodeVLQUint(output, s.Overflows)
		EncodeVLQUint(output, s.MaxLate)
	})
}

// DecodeRecord parses the payload of one frame
func DecodeRecord(payload []byte) (Record, error) {
	var r Record
	typ, err := DecodeVLQUint(&payload)
	if err != nil {
		return r, err
	}
	r.Type = uint8(typ)

	switch typ {
	case RecordLog:
		r.Log, err = DecodeVLQString(&payload)
		return r, err

	case RecordTiming:
		var v [5]uint32
		if err := decodeUints(&payload, v[:]); err != nil {
			return r, err
		}
		r.Timing = TimingRecord{
			Event:  uint8(v[0]),
			Task:   uint8(v[1]),
			Clock:  v[2],
			Value1: v[3],
			Value2: v[4],
		}
		return r, nil

	case RecordStats:
		var v [7]uint32
		if err := decodeUints(&payload, v[:]); err != nil {
			return r, err
		}
		r.Stats = StatsRecord{
			Spawned:   v[0],
			Rejected:  v[1],
			Fired:     v[2],
			Completed: v[3],
			Errors:    v[4],
			Overflows: v[5],
			MaxLate:   v[6],
		}
		return r, nil

	default:
		return r, ErrUnknownRecord
	}
}

func decodeUints(data *[]byte, out []uint32) error {
	for i := range out {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a scheduler event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Task      uint8  // Task ID, 0xFF when not task related
	Clock     uint32 // Low word of the instant the event happened
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtSpawn       = 1 // instance inserted, v1=wake time low word
	EvtSpawnReject = 2 // spawn refused, v1=1 already pending, 2 queue full
	EvtTimerFire   = 3 // instance moved to its ready queue, v1=lateness in ticks
	EvtTimerPast   = 4 // compare target already elapsed when armed
	EvtOverflow    = 5 // counter wrapped, v1=new high word
	EvtTaskStart   = 6 // body started, v1=priority
	EvtTaskError   = 7 // body returned an error
)

const noTask = 0xFF

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
	asyncRingSize  = 8  // Log lines queued from interrupt context
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8        // Next write position
	timingRingRead uint8        // Next position DrainTiming hands out
	timingCount    uint32       // Events recorded since the last clear
	timingEnabled  bool  = true // Always capture timing events

	// Log lines from interrupt context, written out by FlushDebug
	asyncRing    [asyncRingSize]string
	asyncHead    uint8
	asyncLen     uint8
	asyncDropped uint32
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Only call it from thread mode; handlers use DebugAsync.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for FlushDebug. It never blocks and
// drops the message when the queue is full.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	state := disableInterrupts()
	if asyncLen == asyncRingSize {
		asyncDropped++
	} else {
		asyncRing[(asyncHead+asyncLen)%asyncRingSize] = msg
		asyncLen++
	}
	restoreInterrupts(state)
}

// FlushDebug writes out queued messages. Call it from the idle loop.
func FlushDebug() {
	for {
		state := disableInterrupts()
		if asyncLen == 0 {
			restoreInterrupts(state)
			return
		}
		msg := asyncRing[asyncHead]
		asyncRing[asyncHead] = ""
		asyncHead = (asyncHead + 1) % asyncRingSize
		asyncLen--
		restoreInterrupts(state)

		DebugPrintln(msg)
	}
}

// DroppedDebug returns the number of async messages lost to a full queue
func DroppedDebug() uint32 {
	return asyncDropped
}

// RecordTiming captures a timing event in the ring buffer.
// It never blocks and is safe from any priority level.
func RecordTiming(eventType, task uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	state := disableInterrupts()
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Task:      task,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
	if timingRingHead == timingRingRead {
		// Reader fell a full ring behind, drop its oldest event
		timingRingRead = (timingRingRead + 1) % TimingRingSize
	}
	timingCount++
	restoreInterrupts(state)
}

// DrainTiming hands every event recorded since the previous drain to fn,
// oldest first. Call it from thread mode.
func DrainTiming(fn func(TimingEvent)) {
	for {
		state := disableInterrupts()
		if timingRingRead == timingRingHead {
			restoreInterrupts(state)
			return
		}
		evt := timingRing[timingRingRead]
		timingRingRead = (timingRingRead + 1) % TimingRingSize
		restoreInterrupts(state)

		fn(evt)
	}
}

// TimingCount returns the number of events recorded since the last clear
func TimingCount() uint32 {
	return timingCount
}

// EventName returns a short name for an event type code
func EventName(eventType uint8) string {
	switch eventType {
	case EvtSpawn:
		return "SPAWN"
	case EvtSpawnReject:
		return "SPAWN_REJECT"
	case EvtTimerFire:
		return "TIMER_FIRE"
	case EvtTimerPast:
		return "TIMER_PAST!"
	case EvtOverflow:
		return "OVERFLOW"
	case EvtTaskStart:
		return "TASK_START"
	case EvtTaskError:
		return "TASK_ERROR"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing outputs the timing ring buffer (call on shutdown/error)
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] Total events recorded: " + utoa(timingCount))

	// Read from oldest to newest
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		idx := (start + i) % TimingRingSize
		evt := &timingRing[idx]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		debugPrintln("[TIMING] " + FormatTiming(*evt))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// FormatTiming renders one event as a single line
func FormatTiming(evt TimingEvent) string {
	task := "-"
	if evt.Task != noTask {
		task = utoa(uint32(evt.Task))
	}
	return EventName(evt.EventType) +
		" task=" + task +
		" clock=" + utoa(evt.Clock) +
		" v1=" + utoa(evt.Value1) +
		" v2=" + utoa(evt.Value2)
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	state := disableInterrupts()
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
	timingRingRead = 0
	timingCount = 0
	restoreInterrupts(state)
}

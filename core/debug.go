package core

// DebugWriter is a function type for writing console lines
type DebugWriter func(string)

// TimingEvent captures a control-loop event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Channel   uint8  // Mode, ESC channel or axis, depending on EventType
	Clock     uint32 // Control tick at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtModeChange  = 1 // Channel=new mode, Value1=old mode
	EvtPulseTrain  = 2 // Value1=peak, Value2=stop compare value
	EvtPulseSkip   = 3 // Channel=mode that gated the train
	EvtESCStall    = 4 // Value1=polls spent, Value2=bits asserted
	EvtESCLate     = 5 // Value1=counter, Value2=bits asserted
	EvtSensorError = 6 // Value1=consecutive errors
	EvtConfigError = 7 // Value1=error code
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the console writer installed by platform code
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled gates the verbose per-tick output
	debugEnabled bool = false

	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8
	timingEnabled  bool = true

	debugChan chan string
)

// SetDebugWriter sets the platform-specific console output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables verbose output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether verbose output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the goroutine draining DebugAsync messages.
// Call from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// ConsolePrintln writes a console line regardless of the debug flag.
// Mode transitions and configuration faults go through here.
func ConsolePrintln(msg string) {
	if debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugPrintln writes a verbose line when debug output is enabled
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a message without blocking the control loop.
// Falls back to a synchronous write when InitAsyncDebug was never called;
// drops the message when the queue is full.
func DebugAsync(msg string) {
	if !debugEnabled {
		return
	}
	if debugChan == nil {
		DebugPrintln(msg)
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordTiming captures an event in the ring buffer
func RecordTiming(eventType, channel uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Channel:   channel,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the recorded events, oldest first
func TimingEvents() []TimingEvent {
	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

func timingEventName(eventType uint8) string {
	switch eventType {
	case EvtModeChange:
		return "MODE"
	case EvtPulseTrain:
		return "PULSES"
	case EvtPulseSkip:
		return "SKIP"
	case EvtESCStall:
		return "ESC_STALL!"
	case EvtESCLate:
		return "ESC_LATE!"
	case EvtSensorError:
		return "SENSOR_ERR"
	case EvtConfigError:
		return "CONFIG_ERR"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing writes the ring to the console, oldest first
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	debugPrintln("[TIMING] Uptime ticks: " + utoa(GetUptime()))
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + timingEventName(evt.EventType) +
			" ch=" + itoa(int(evt.Channel)) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}

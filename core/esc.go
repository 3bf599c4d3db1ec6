package core

// Pulse timing, in counter quanta
const (
	QuantumUS        = 4       // One counter quantum
	PulseBase        = 250     // Width of a zero command (1 ms)
	SettleMargin     = 1       // Added to the peak so no start lands on the counter reset
	DefaultSpinLimit = 1 << 18 // Counter polls before the start loop gives up
)

// Output port bits per ESC channel. Bits outside ESCPortMask belong to
// other functions and are never touched.
var ESCBits = [NumESC]uint8{
	ESCFrontRight: 0x10,
	ESCFrontLeft:  0x20,
	ESCRearRight:  0x40,
	ESCRearLeft:   0x80,
}

const ESCPortMask = 0xf0

// PulseScheduler emits one pulse per ESC per tick. All four pulses end on
// the same compare match; each start is offset so the width comes out as
// PulseBase plus the command.
type PulseScheduler struct {
	drv ESCDriver

	// SpinLimit bounds the start-edge poll loop
	SpinLimit int

	peak   uint16
	stop   uint16
	starts [NumESC]uint16
	active bool

	trains uint32
	stalls uint32
	late   uint32
}

// NewPulseScheduler creates a scheduler on the given driver
func NewPulseScheduler(drv ESCDriver) *PulseScheduler {
	return &PulseScheduler{
		drv:       drv,
		SpinLimit: DefaultSpinLimit,
	}
}

// StartOffsets computes the common peak and each channel's start offset,
// measured from the counter reset. Every start lies in [SettleMargin, peak].
func StartOffsets(esc *ESCValues) (peak uint16, starts [NumESC]uint16) {
	peak = uint16(esc.Max()) + SettleMargin
	for c, v := range esc {
		starts[c] = peak - uint16(v)
	}
	return peak, starts
}

// Start runs one pulse train. Outputs are forced low and the previous
// compare is cancelled first; when mode is below IDLE nothing else happens.
// Returns once every line has been raised, leaving the stop edge to the
// compare interrupt.
func (s *PulseScheduler) Start(mode Mode, esc *ESCValues) {
	s.drv.DisableCompare()
	s.drv.ClearOutputs(ESCPortMask)

	if !mode.Armed() {
		if s.active {
			RecordTiming(EvtPulseSkip, uint8(mode), GetTime(), 0, 0)
			s.active = false
		}
		return
	}
	s.active = true

	s.peak, s.starts = StartOffsets(esc)
	s.stop = s.peak + PulseBase

	state := disableInterrupts()
	s.drv.ResetCounter()
	s.drv.ArmCompare(s.stop)
	restoreInterrupts(state)

	var bits uint8
	for polls := 0; bits != ESCPortMask; polls++ {
		if polls >= s.SpinLimit {
			s.abort()
			s.stalls++
			RecordTiming(EvtESCStall, 0, GetTime(), uint32(polls), uint32(bits))
			return
		}

		now := s.drv.ReadCounter()
		if now >= s.stop {
			s.abort()
			s.late++
			RecordTiming(EvtESCLate, 0, GetTime(), uint32(now), uint32(bits))
			return
		}

		var due uint8
		for c, start := range s.starts {
			if start <= now {
				due |= ESCBits[c]
			}
		}
		if fresh := due &^ bits; fresh != 0 {
			s.drv.SetOutputs(fresh)
			bits |= fresh
		}
	}

	s.trains++
	RecordTiming(EvtPulseTrain, 0, GetTime(), uint32(s.peak), uint32(s.stop))
}

// OnCompare is the compare-match interrupt handler: the common stop edge.
func (s *PulseScheduler) OnCompare() {
	s.drv.ClearOutputs(ESCPortMask)
	s.drv.DisableCompare()
}

func (s *PulseScheduler) abort() {
	s.drv.DisableCompare()
	s.drv.ClearOutputs(ESCPortMask)
}

// Peak returns the peak of the last train
func (s *PulseScheduler) Peak() uint16 {
	return s.peak
}

// Starts returns the start offsets of the last train
func (s *PulseScheduler) Starts() [NumESC]uint16 {
	return s.starts
}

// Stop returns the compare value of the last train
func (s *PulseScheduler) Stop() uint16 {
	return s.stop
}

// Trains returns the number of completed trains
func (s *PulseScheduler) Trains() uint32 {
	return s.trains
}

// Stalls returns the number of trains abandoned because the counter stopped
func (s *PulseScheduler) Stalls() uint32 {
	return s.stalls
}

// Late returns the number of trains cut short by the stop edge
func (s *PulseScheduler) Late() uint32 {
	return s.late
}

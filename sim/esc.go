// Package sim provides simulated hardware for the flight controller core:
// an ESC counter/compare/port block, GPIO pins, a scripted receiver and a gyro.
package sim

import "quadfc/core"

// ESC simulates the pulse hardware. The counter advances Step quanta before
// every read, so each poll of the start-edge loop costs time. When the
// compare interrupt is enabled and the counter passes the compare value the
// registered handler runs, exactly as the hardware interrupt would.
type ESC struct {
	Port   uint8  // Output port, including bits the ESCs do not own
	Step   uint16 // Quanta per counter read
	Frozen bool   // Counter stuck, for stall tests

	counter   uint16
	compare   uint16
	compareOn bool
	onCompare func()

	rise [core.NumESC]int
	fall [core.NumESC]int

	Reads    int
	Compares int
}

// NewESC creates a simulated ESC block advancing one quantum per read
func NewESC() *ESC {
	e := &ESC{Step: 1}
	e.clearEdges()
	return e
}

// OnCompare registers the compare-match interrupt handler
func (e *ESC) OnCompare(fn func()) {
	e.onCompare = fn
}

func (e *ESC) DisableCompare() {
	e.compareOn = false
}

func (e *ESC) ArmCompare(stop uint16) {
	e.compare = stop
	e.compareOn = true
}

// CompareEnabled reports whether the compare interrupt is armed
func (e *ESC) CompareEnabled() bool {
	return e.compareOn
}

func (e *ESC) ResetCounter() {
	e.counter = 0
	e.clearEdges()
}

func (e *ESC) ReadCounter() uint16 {
	e.Reads++
	if !e.Frozen {
		e.Advance(e.Step)
	}
	return e.counter
}

// Counter returns the counter without advancing it
func (e *ESC) Counter() uint16 {
	return e.counter
}

func (e *ESC) SetOutputs(bits uint8) {
	for c, bit := range core.ESCBits {
		if bits&bit != 0 && e.Port&bit == 0 {
			e.rise[c] = int(e.counter)
		}
	}
	e.Port |= bits
}

func (e *ESC) ClearOutputs(bits uint8) {
	for c, bit := range core.ESCBits {
		if bits&bit != 0 && e.Port&bit != 0 {
			e.fall[c] = int(e.counter)
		}
	}
	e.Port &^= bits
}

// Advance moves the counter forward n quanta, firing the compare
// interrupt on the way if it is armed.
func (e *ESC) Advance(n uint16) {
	for i := uint16(0); i < n; i++ {
		e.counter++
		if e.compareOn && e.counter == e.compare {
			e.Compares++
			if e.onCompare != nil {
				e.onCompare()
			} else {
				e.compareOn = false
			}
		}
	}
}

// Finish runs the counter until the armed compare fires
func (e *ESC) Finish() {
	for i := 0; e.compareOn && i < 1<<16; i++ {
		e.Advance(1)
	}
}

// Rise returns the counter value when the channel went high, or -1
func (e *ESC) Rise(c int) int {
	return e.rise[c]
}

// Fall returns the counter value when the channel went low, or -1
func (e *ESC) Fall(c int) int {
	return e.fall[c]
}

// Width returns the channel's pulse width in quanta, or -1 when the
// pulse has not both started and ended since the last counter reset
func (e *ESC) Width(c int) int {
	if e.rise[c] < 0 || e.fall[c] < 0 || e.fall[c] < e.rise[c] {
		return -1
	}
	return e.fall[c] - e.rise[c]
}

func (e *ESC) clearEdges() {
	for c := range e.rise {
		e.rise[c] = -1
		e.fall[c] = -1
	}
}

//go:build rp2040

package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"quadfc/core"
)

// The heartbeat program shifts one 16-bit pattern word out of the OSR,
// MSB first, holding each bit for 122 cycles of the slowest clock
// (about 64 ms, the same as HeartbeatTicks control ticks).
//
// Word format: pattern in bits 31..16, low half ignored.
func buildHeartbeatProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Set(rp2pio.SetDestY, 15).Encode(), // 1: set y, 15 (bit count)
		// bitloop:
		asm.Out(rp2pio.OutDestPins, 1).Delay(31).Encode(),  // 2: out pins, 1 [31]
		asm.Jmp(4, rp2pio.JmpAlways).Delay(31).Encode(),    // 3: jmp 4 [31]
		asm.Jmp(5, rp2pio.JmpAlways).Delay(31).Encode(),    // 4: jmp 5 [31]
		asm.Jmp(2, rp2pio.JmpYNZeroDec).Delay(25).Encode(), // 5: jmp y--, bitloop [25]
		// .wrap
	}
}

const heartbeatPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// RefillTicks is how often the TX FIFO is topped up. Four queued words
// last over two seconds.
const RefillTicks = core.TickHz

// Heartbeat drives the status LED from a PIO state machine so the
// pattern keeps running while the control loop spins on pulse starts.
// It implements core.Indicator.
type Heartbeat struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	pin     machine.Pin
	pattern uint16
	timer   core.Timer
}

// NewHeartbeat claims a state machine and starts the LED program on pin
func NewHeartbeat(pin machine.Pin) (*Heartbeat, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, errNoStateMachine
	}

	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}
	h := &Heartbeat{
		pio:     pioHW,
		sm:      pioHW.StateMachine(smNum),
		pin:     pin,
		pattern: core.PatternInit,
	}

	h.sm.TryClaim()

	program := buildHeartbeatProgram()
	offset, err := h.pio.AddProgram(program, heartbeatPIOOrigin)
	if err != nil {
		return nil, err
	}

	h.pin.Configure(machine.PinConfig{Mode: h.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(h.pin, 1)
	// Shift left so the pattern's MSB goes out first, no autopull
	cfg.SetOutShift(false, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(65535, 0)

	h.sm.Init(offset, cfg)
	h.sm.SetPindirsConsecutive(h.pin, 1, true)
	h.sm.SetPinsConsecutive(h.pin, 1, false)
	h.sm.SetEnabled(true)

	h.refill()
	h.timer.Handler = h.refillTimer
	h.timer.WakeTime = core.GetTime() + RefillTicks
	core.ScheduleTimer(&h.timer)
	return h, nil
}

// SetPattern drops the queued words and shows the new pattern from the
// next word boundary
func (h *Heartbeat) SetPattern(pattern uint16) {
	h.pattern = pattern
	h.sm.ClearFIFOs()
	h.refill()
}

func (h *Heartbeat) refill() {
	for !h.sm.IsTxFIFOFull() {
		h.sm.TxPut(uint32(h.pattern) << 16)
	}
}

func (h *Heartbeat) refillTimer(t *core.Timer) uint8 {
	h.refill()
	t.WakeTime += RefillTicks
	return core.SF_RESCHEDULE
}

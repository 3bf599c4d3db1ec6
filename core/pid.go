package core

import (
	"quadfc/eeprom"
)

// IntegralLimit bounds the integrator. The accumulator saturates instead of
// wrapping, and is only cleared by Reset.
const IntegralLimit = 32767

// PID is a fixed-point rate controller for one axis.
type PID struct {
	KP, KI, KD int32
	KDiv       int32
	UMul, UDiv int32

	integral  int32
	prevError int32
}

// Configure loads gains and clears the runtime state
func (p *PID) Configure(params eeprom.PIDParams) {
	p.KP = int32(params.KP)
	p.KI = int32(params.KI)
	p.KD = int32(params.KD)
	p.KDiv = int32(params.KDiv)
	p.UMul = int32(params.UMul)
	p.UDiv = int32(params.UDiv)
	p.Reset()
}

// Reset zeroes the integrator and the derivative history
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
}

// Integral returns the accumulated error
func (p *PID) Integral() int32 {
	return p.integral
}

// Update feeds one error sample (reference minus measured rate) and returns
// the correction. Must be called exactly once per tick while flying.
func (p *PID) Update(err int32) int32 {
	p.integral = clamp(p.integral+err, -IntegralLimit, IntegralLimit)
	derivative := err - p.prevError
	p.prevError = err

	if p.KDiv == 0 || p.UDiv == 0 {
		return 0
	}

	raw := (int64(p.KP)*int64(err) +
		int64(p.KI)*int64(p.integral) +
		int64(p.KD)*int64(derivative)) / int64(p.KDiv)
	out := raw * int64(p.UMul) / int64(p.UDiv)
	return int32(clamp(out, -1<<31, 1<<31-1))
}

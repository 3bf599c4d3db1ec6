package core

import "golang.org/x/exp/constraints"

// ESC channels, in the order of the output bit table
const (
	ESCFrontRight = iota
	ESCFrontLeft
	ESCRearRight
	ESCRearLeft
	NumESC
)

// ESCMax is the largest actuator command (1 ms above the base pulse)
const ESCMax = 250

// ESCValues holds one command per rotor, each in [0, ESCMax]
type ESCValues [NumESC]uint8

// Mix combines throttle and the three axis corrections for a quad in X
// configuration. Sums are divided by divisor and clamped to [0, ESCMax].
// A non-positive divisor yields all-zero commands.
func Mix(throttle, roll, pitch, yaw, divisor int32) ESCValues {
	var esc ESCValues
	if divisor <= 0 {
		return esc
	}
	// four int32 terms always fit in int64
	t, r, p, y, d := int64(throttle), int64(roll), int64(pitch), int64(yaw), int64(divisor)
	esc[ESCFrontRight] = escCommand(t-r+p-y, d)
	esc[ESCFrontLeft] = escCommand(t+r+p+y, d)
	esc[ESCRearRight] = escCommand(t-r-p+y, d)
	esc[ESCRearLeft] = escCommand(t+r-p-y, d)
	return esc
}

func escCommand(sum, divisor int64) uint8 {
	return uint8(clamp(sum/divisor, 0, ESCMax))
}

// Max returns the largest command
func (e *ESCValues) Max() uint8 {
	var m uint8
	for _, v := range e {
		if v > m {
			m = v
		}
	}
	return m
}

// Fill sets every command to v
func (e *ESCValues) Fill(v uint8) {
	for i := range e {
		e[i] = v
	}
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

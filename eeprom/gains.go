package eeprom

import "math"

const (
	maxKDiv = 65535
	maxGain = math.MaxInt16
	maxDen  = 1 << 20
)

// Rationalize converts decimal gains into fixed-point gains sharing one
// divisor. The divisor starts at the least common multiple of the gains'
// denominators and is halved until it fits 16 bits and every scaled gain
// fits a signed 16-bit word.
func Rationalize(kp, ki, kd float64) (PIDParams, error) {
	var num, den [3]int64
	for i, g := range [3]float64{kp, ki, kd} {
		num[i], den[i] = rationalize(g)
	}

	kdiv := lcm(den[0], lcm(den[1], den[2]))
	for kdiv > 0 {
		if kdiv > maxKDiv {
			kdiv /= 2
			continue
		}
		var scaled [3]int64
		fits := true
		for i := range scaled {
			scaled[i] = num[i] * kdiv / den[i]
			if scaled[i] > maxGain || scaled[i] < -maxGain {
				fits = false
			}
		}
		if fits {
			return PIDParams{
				KP:   int16(scaled[0]),
				KI:   int16(scaled[1]),
				KD:   int16(scaled[2]),
				KDiv: uint16(kdiv),
				UMul: 1,
				UDiv: 1,
			}, nil
		}
		kdiv /= 2
	}
	return PIDParams{}, ErrGainOverflow
}

// rationalize returns the simplest fraction equal to x within float precision,
// using continued-fraction convergents.
func rationalize(x float64) (num, den int64) {
	neg := x < 0
	if neg {
		x = -x
	}
	target := x

	h1, h2 := int64(1), int64(0)
	k1, k2 := int64(0), int64(1)
	for {
		a := math.Floor(x)
		h := int64(a)*h1 + h2
		k := int64(a)*k1 + k2
		if k > maxDen {
			break
		}
		h1, h2 = h, h1
		k1, k2 = k, k1
		if math.Abs(float64(h1)/float64(k1)-target) <= 1e-12*math.Max(1, target) {
			break
		}
		frac := x - a
		if frac == 0 {
			break
		}
		x = 1 / frac
	}

	if neg {
		h1 = -h1
	}
	return h1, k1
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

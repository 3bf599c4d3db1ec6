package core

// CalibrationCount is the number of gyro samples averaged into the bias
const CalibrationCount = 2500

// Calibrator averages gyro samples taken at rest into a per-axis bias
type Calibrator struct {
	count int
	sum   [3]int32
	bias  [3]int16
}

// Reset restarts the calibration window
func (c *Calibrator) Reset() {
	*c = Calibrator{}
}

// Add feeds one sample and reports whether the window is complete.
// Samples after completion are ignored.
func (c *Calibrator) Add(r Rates) bool {
	if c.count >= CalibrationCount {
		return true
	}
	c.sum[0] += int32(int16(r.Roll))
	c.sum[1] += int32(int16(r.Pitch))
	c.sum[2] += int32(int16(r.Yaw))
	c.count++
	if c.count < CalibrationCount {
		return false
	}
	for i, s := range c.sum {
		c.bias[i] = int16(s / CalibrationCount)
	}
	return true
}

// Done reports whether the bias is available
func (c *Calibrator) Done() bool {
	return c.count >= CalibrationCount
}

// Count returns the number of samples taken so far
func (c *Calibrator) Count() int {
	return c.count
}

// Bias returns the roll, pitch and yaw bias
func (c *Calibrator) Bias() (roll, pitch, yaw int16) {
	return c.bias[0], c.bias[1], c.bias[2]
}

package core

// ESCDriver is the hardware behind the pulse scheduler: one free-running
// counter counting pulse quanta, one compare-match interrupt and the output
// port carrying the four ESC lines. Platform-specific implementations handle
// the actual registers.
type ESCDriver interface {
	// DisableCompare masks the compare-match interrupt
	DisableCompare()

	// ArmCompare programs the compare value and enables its interrupt.
	// When the counter reaches it the driver calls the scheduler's OnCompare.
	ArmCompare(stop uint16)

	// ResetCounter restarts the counter from zero
	ResetCounter()

	// ReadCounter returns the counter, in quanta since the last reset
	ReadCounter() uint16

	// SetOutputs drives the given port bits high, leaving other bits alone
	SetOutputs(bits uint8)

	// ClearOutputs drives the given port bits low, leaving other bits alone
	ClearOutputs(bits uint8)
}

var escDriver ESCDriver

// SetESCDriver is called by target-specific code to register its driver.
func SetESCDriver(d ESCDriver) {
	escDriver = d
}

// GetESCDriver returns the registered driver, or nil
func GetESCDriver() ESCDriver {
	return escDriver
}

// MustESC returns the configured driver or panics if missing.
func MustESC() ESCDriver {
	d := GetESCDriver()
	if d == nil {
		panic("ESC driver not configured")
	}
	return d
}

package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the digital output interface used by the status indicator.
// Platform-specific implementations handle the actual hardware.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output, driven low
	ConfigureOutput(pin GPIOPin) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads back the current pin state
	GetPin(pin GPIOPin) (bool, error)
}

var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// GetGPIODriver returns the registered driver, or nil
func GetGPIODriver() GPIODriver {
	return gpioDriver
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	d := GetGPIODriver()
	if d == nil {
		panic("GPIO driver not configured")
	}
	return d
}

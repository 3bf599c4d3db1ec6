//go:build rp2040

package main

import (
	"errors"
	"machine"

	"quadfc/core"
	"quadfc/sensor"
)

var errPinNotConfigured = errors.New("pin not configured")

// offlineSensor stands in when no gyro answers, so calibration fails
// into ERROR instead of the firmware hanging at boot
type offlineSensor struct{}

func (offlineSensor) ReadRates() (core.Rates, error) {
	return core.Rates{}, sensor.ErrNotConnected
}

// initRateSensor brings up I2C0 (SDA=GP4, SCL=GP5) and probes for the
// ITG-3205, then the LSM6DS3TR
func initRateSensor() core.RateSensor {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		core.ConsolePrintln("[BOOT] i2c: " + err.Error())
		return offlineSensor{}
	}

	itg := sensor.NewITG3205(i2c)
	if err := itg.Configure(); err == nil {
		core.ConsolePrintln("[BOOT] gyro ITG-3205")
		return itg
	}

	lsm, err := sensor.NewLSM6DS3TR(i2c)
	if err == nil {
		core.ConsolePrintln("[BOOT] gyro LSM6DS3TR")
		return lsm
	}

	core.ConsolePrintln("[BOOT] no gyro: " + err.Error())
	return offlineSensor{}
}

package sensor

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lsm6ds3tr"

	"quadfc/core"
)

// RotationReader is implemented by the tinygo IMU drivers; values are in
// micro-degrees per second.
type RotationReader interface {
	ReadRotation() (x, y, z int32, err error)
}

// Rotation adapts an IMU driver to the gyro scale the control gains are
// tuned for (14.375 LSB per degree per second).
type Rotation struct {
	dev RotationReader
}

func NewRotation(dev RotationReader) *Rotation {
	return &Rotation{dev: dev}
}

func (r *Rotation) ReadRates() (core.Rates, error) {
	x, y, z, err := r.dev.ReadRotation()
	if err != nil {
		return core.Rates{}, err
	}
	return core.Rates{
		Roll:  scaleRotation(x),
		Pitch: scaleRotation(y),
		Yaw:   scaleRotation(z),
	}, nil
}

// scaleRotation converts micro-degrees per second to gyro LSB. The whole
// int32 input range maps inside int16.
func scaleRotation(udps int32) uint16 {
	return uint16(int16(int64(udps) * 115 / 8000000))
}

// NewLSM6DS3TR configures an LSM6DS3TR on the bus and returns it as a rate sensor
func NewLSM6DS3TR(bus drivers.I2C) (*Rotation, error) {
	dev := lsm6ds3tr.New(bus)
	err := dev.Configure(lsm6ds3tr.Configuration{
		AccelRange:      lsm6ds3tr.ACCEL_2G,
		AccelSampleRate: lsm6ds3tr.ACCEL_SR_416,
		GyroRange:       lsm6ds3tr.GYRO_2000DPS,
		GyroSampleRate:  lsm6ds3tr.GYRO_SR_416,
	})
	if err != nil {
		return nil, err
	}
	if !dev.Connected() {
		return nil, ErrNotConnected
	}
	return NewRotation(dev), nil
}

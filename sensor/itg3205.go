// Package sensor provides the angular rate sensors feeding the control loop.
package sensor

import (
	"errors"

	"tinygo.org/x/drivers"

	"quadfc/core"
)

// ITG3205Address is the default bus address (AD0 tied high)
const ITG3205Address = 0x68

// ITG-3205 registers
const (
	regWhoAmI    = 0x00
	regSmplrtDiv = 0x15
	regDLPFFS    = 0x16
	regGyroXOutH = 0x1d
	regPwrMgm    = 0x3e
)

const (
	fsSel2000DPS = 0x18 // FS_SEL=3, the only documented range
	dlpf42Hz     = 0x03 // 1 kHz internal sample rate
	clkSelPLLX   = 0x01
	pwrReset     = 0x80
)

var (
	ErrNotConnected = errors.New("sensor: gyro not responding")
)

// ITG3205 is a three-axis rate gyro on an I2C bus. Output is 14.375 LSB
// per degree per second.
type ITG3205 struct {
	bus     drivers.I2C
	Address uint16

	buf [6]byte
}

// NewITG3205 creates a driver at the default address. Call Configure before reading.
func NewITG3205(bus drivers.I2C) *ITG3205 {
	return &ITG3205{
		bus:     bus,
		Address: ITG3205Address,
	}
}

// Connected checks the WHO_AM_I register, which echoes the bus address
func (d *ITG3205) Connected() bool {
	id := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{regWhoAmI}, id); err != nil {
		return false
	}
	return id[0]&0x7e == ITG3205Address&0x7e
}

// Configure resets the gyro and sets it up for the control tick: full
// scale range, 42 Hz low pass and a sample every 4 ms.
func (d *ITG3205) Configure() error {
	if !d.Connected() {
		return ErrNotConnected
	}
	writes := [][2]byte{
		{regPwrMgm, pwrReset},
		{regPwrMgm, clkSelPLLX},
		{regSmplrtDiv, 1000/core.TickHz - 1},
		{regDLPFFS, fsSel2000DPS | dlpf42Hz},
	}
	for _, w := range writes {
		if err := d.bus.Tx(d.Address, w[:], nil); err != nil {
			return err
		}
	}
	return nil
}

// ReadRates reads X, Y and Z as roll, pitch and yaw
func (d *ITG3205) ReadRates() (core.Rates, error) {
	if err := d.bus.Tx(d.Address, []byte{regGyroXOutH}, d.buf[:]); err != nil {
		return core.Rates{}, err
	}
	return core.Rates{
		Roll:  uint16(d.buf[0])<<8 | uint16(d.buf[1]),
		Pitch: uint16(d.buf[2])<<8 | uint16(d.buf[3]),
		Yaw:   uint16(d.buf[4])<<8 | uint16(d.buf[5]),
	}, nil
}

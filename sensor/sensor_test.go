package sensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/core"
)

// fakeBus is a register file behind an I2C address
type fakeBus struct {
	addr   uint16
	regs   [256]byte
	writes [][]byte
	err    error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if addr != b.addr {
		return errors.New("nack")
	}
	if len(w) > 1 {
		b.writes = append(b.writes, append([]byte(nil), w...))
		b.regs[w[0]] = w[1]
	}
	if len(r) > 0 {
		copy(r, b.regs[w[0]:])
	}
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *fakeBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

func newITGBus() *fakeBus {
	b := &fakeBus{addr: ITG3205Address}
	b.regs[regWhoAmI] = ITG3205Address
	return b
}

func TestITG3205Configure(t *testing.T) {
	bus := newITGBus()
	gyro := NewITG3205(bus)
	require.NoError(t, gyro.Configure())

	assert.Equal(t, [][]byte{
		{regPwrMgm, 0x80},
		{regPwrMgm, 0x01},
		{regSmplrtDiv, 3},
		{regDLPFFS, 0x1b},
	}, bus.writes)
}

func TestITG3205NotConnected(t *testing.T) {
	bus := newITGBus()
	bus.regs[regWhoAmI] = 0x53
	assert.ErrorIs(t, NewITG3205(bus).Configure(), ErrNotConnected)

	bus = newITGBus()
	bus.addr = 0x69
	assert.False(t, NewITG3205(bus).Connected())
}

func TestITG3205ReadRates(t *testing.T) {
	bus := newITGBus()
	copy(bus.regs[regGyroXOutH:], []byte{0x01, 0x02, 0xff, 0xec, 0x80, 0x00})

	rates, err := NewITG3205(bus).ReadRates()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), rates.Roll)
	assert.Equal(t, int16(-20), int16(rates.Pitch))
	assert.Equal(t, int16(-32768), int16(rates.Yaw))
}

func TestITG3205ReadError(t *testing.T) {
	bus := newITGBus()
	bus.err = errors.New("bus stuck")
	_, err := NewITG3205(bus).ReadRates()
	assert.EqualError(t, err, "bus stuck")
}

type fakeIMU struct {
	x, y, z int32
	err     error
}

func (f *fakeIMU) ReadRotation() (int32, int32, int32, error) {
	return f.x, f.y, f.z, f.err
}

func TestRotationScale(t *testing.T) {
	imu := &fakeIMU{x: 1000000, y: -8000000, z: 2100000000}
	rates, err := NewRotation(imu).ReadRates()
	require.NoError(t, err)

	assert.Equal(t, int16(14), int16(rates.Roll))
	assert.Equal(t, int16(-115), int16(rates.Pitch))
	assert.Equal(t, int16(30187), int16(rates.Yaw))

	imu.err = errors.New("i2c timeout")
	rates, err = NewRotation(imu).ReadRates()
	assert.Error(t, err)
	assert.Equal(t, core.Rates{}, rates)
}

func TestRotationFullRange(t *testing.T) {
	assert.Equal(t, int16(30870), int16(scaleRotation(1<<31-1)))
	assert.Equal(t, int16(-30870), int16(scaleRotation(-1<<31)))
}

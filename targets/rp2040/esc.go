//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"quadfc/core"
)

// ESC lines are four consecutive GPIOs. Port bit n (4..7) drives
// GPIO escPinBase+n-4, so front-right is the lowest pin.
const escPinBase = 10

// SIO single-cycle GPIO registers
const (
	sioBase       = 0xd0000000
	sioGPIOOutSet = sioBase + 0x14
	sioGPIOOutClr = sioBase + 0x18
)

var (
	gpioOutSet = (*volatile.Register32)(unsafe.Pointer(uintptr(sioGPIOOutSet)))
	gpioOutClr = (*volatile.Register32)(unsafe.Pointer(uintptr(sioGPIOOutClr)))
)

// escCompare is called from the alarm interrupt
var escCompare func()

// RPESCDriver implements core.ESCDriver on the 1 MHz system timer.
// Alarm 3 is the common stop edge; the counter is the timer itself,
// offset from the last reset and scaled to 4 us quanta.
type RPESCDriver struct {
	base uint32
}

// NewRPESCDriver configures the ESC pins low and installs the alarm interrupt
func NewRPESCDriver(onCompare func()) *RPESCDriver {
	for n := 0; n < core.NumESC; n++ {
		pin := machine.Pin(escPinBase + n)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}

	d := &RPESCDriver{}
	d.DisableCompare()
	escCompare = onCompare

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_3, escAlarmISR)
	intr.SetPriority(0x00)
	intr.Enable()
	return d
}

func escAlarmISR(interrupt.Interrupt) {
	timerIntr.Set(alarm3Bit)
	if escCompare != nil {
		escCompare()
	}
}

func (d *RPESCDriver) DisableCompare() {
	timerInte.ClearBits(alarm3Bit)
	timerArmed.Set(alarm3Bit)
	timerIntr.Set(alarm3Bit)
}

func (d *RPESCDriver) ArmCompare(stop uint16) {
	timerIntr.Set(alarm3Bit)
	timerInte.SetBits(alarm3Bit)
	timerAlarm3.Set(d.base + uint32(stop)*core.QuantumUS)
}

func (d *RPESCDriver) ResetCounter() {
	d.base = GetHardwareTime()
}

func (d *RPESCDriver) ReadCounter() uint16 {
	return uint16((GetHardwareTime() - d.base) / core.QuantumUS)
}

func (d *RPESCDriver) SetOutputs(bits uint8) {
	gpioOutSet.Set(escPinMask(bits))
}

func (d *RPESCDriver) ClearOutputs(bits uint8) {
	gpioOutClr.Set(escPinMask(bits))
}

// escPinMask maps ESC port bits onto the GPIO bank
func escPinMask(bits uint8) uint32 {
	var mask uint32
	for n := 4; n < 8; n++ {
		if bits&core.ESCPortMask&(1<<n) != 0 {
			mask |= 1 << (escPinBase + n - 4)
		}
	}
	return mask
}

//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerALARM3   = timerBase + 0x1c // Alarm 3 target, writing arms it
	timerARMED    = timerBase + 0x20 // Write 1 to disarm an alarm
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
	timerINTR     = timerBase + 0x34 // Raw interrupts, write 1 to clear
	timerINTE     = timerBase + 0x38 // Interrupt enable

	alarm3Bit = 1 << 3
)

var (
	timerAlarm3 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM3)))
	timerArmed  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerRAWL   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerIntr   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerInte   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// GetHardwareTime reads the low 32 bits of the 1 MHz timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

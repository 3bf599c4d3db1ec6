//go:build rp2040

package main

import (
	"machine"
	"time"

	"quadfc/core"
	"quadfc/targets/pio"
)

const statusLEDPin = core.GPIOPin(machine.LED)

// Debug counter
var overruns uint32

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	core.SetDebugWriter(func(s string) {
		USBWriteBytes([]byte(s + "\r\n"))
	})
	core.InitAsyncDebug()
	core.TimerInit()

	core.ConsolePrintln("[BOOT] quadcopter flight controller")

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	var indicator core.Indicator
	if hb, err := pio.NewHeartbeat(machine.LED); err == nil {
		indicator = hb
	} else {
		led := core.NewStatusLED(core.MustGPIO(), statusLEDPin)
		if err := led.Start(); err != nil {
			core.ConsolePrintln("[BOOT] status led: " + err.Error())
		}
		indicator = led
	}

	var pulses *core.PulseScheduler
	core.SetESCDriver(NewRPESCDriver(func() { pulses.OnCompare() }))
	pulses = core.NewPulseScheduler(core.MustESC())

	store := NewFlashStore()
	fc := core.NewFlightController(initRateSensor(), core.IdleReceiver{}, store, pulses, indicator)
	console := core.NewConsole(fc, pulses, store)

	// Anything longer than a few control ticks without a kick resets the chip
	err = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 100})
	if err == nil {
		err = machine.Watchdog.Start()
	}
	if err != nil {
		core.ConsolePrintln("[BOOT] watchdog: " + err.Error())
	}

	ticker := time.NewTicker(core.TickPeriodUS * time.Microsecond)
	defer ticker.Stop()

	for range ticker.C {
		start := GetHardwareTime()
		machine.Watchdog.Update()

		fc.Tick()

		for USBAvailable() > 0 {
			b, err := USBRead()
			if err != nil {
				core.DebugAsync("[USB] read: " + err.Error())
				break
			}
			console.Feed(b)
		}

		if GetHardwareTime()-start > core.TickPeriodUS {
			overruns++
			core.DebugAsync("[FC] tick overrun " + itoa(int(overruns)))
		}
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

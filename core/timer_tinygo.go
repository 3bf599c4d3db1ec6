//go:build tinygo

package core

import "sync/atomic"

var systemTicksValue uint32

// getSystemTicks returns the tick count; the watchdog path may read it from an interrupt
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicksValue)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicksValue, ticks)
}

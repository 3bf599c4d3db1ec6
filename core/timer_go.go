//go:build !tinygo

package core

// getSystemTicks returns the tick count (regular Go, used by tests and the simulator)
func getSystemTicks() uint32 {
	return systemTicks
}

func setSystemTicks(ticks uint32) {
	systemTicks = ticks
}

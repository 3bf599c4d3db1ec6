//go:build !tinygo

package core

// State stands in for the saved interrupt mask on regular Go
type State uintptr

// disableInterrupts is a no-op on regular Go; the simulator has no interrupts to mask
func disableInterrupts() State {
	return 0
}

func restoreInterrupts(state State) {}

//go:build rp2040

package pio

import "errors"

var errNoStateMachine = errors.New("pio: no free state machine")

var (
	// RP2040 has 2 PIO blocks (PIO0, PIO1) with 4 state machines each
	pioAllocations = [2][4]bool{} // [pioNum][smNum]
)

// allocatePIO hands out the first free state machine
// Returns (pioNum, smNum, ok)
func allocatePIO() (uint8, uint8, bool) {
	for pioNum := range pioAllocations {
		for smNum := range pioAllocations[pioNum] {
			if !pioAllocations[pioNum][smNum] {
				pioAllocations[pioNum][smNum] = true
				return uint8(pioNum), uint8(smNum), true
			}
		}
	}
	return 0, 0, false
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/core"
	"quadfc/sim"
)

const ledPin = core.GPIOPin(25)

func runTicks(from, to uint32) {
	for tick := from; tick <= to; tick++ {
		core.SetTime(tick)
		core.ProcessTimers()
	}
}

func TestStatusLEDHeartbeat(t *testing.T) {
	core.ResetTimers()
	defer core.ResetTimers()
	core.SetTime(0)

	gpio := sim.NewGPIO()
	led := core.NewStatusLED(gpio, ledPin)
	require.NoError(t, led.Start())
	led.SetPattern(0xa000)

	runTicks(1, 15)
	assert.Empty(t, gpio.History[ledPin])

	runTicks(16, 4*core.HeartbeatTicks)
	assert.Equal(t, []bool{true, false, true, false}, gpio.History[ledPin])
	assert.Equal(t, uint16(0x000a), led.Pattern())

	led.Stop()
	runTicks(4*core.HeartbeatTicks+1, 8*core.HeartbeatTicks)
	assert.Equal(t, []bool{true, false, true, false, false}, gpio.History[ledPin])
}

func TestStatusLEDPatternIsPeriodic(t *testing.T) {
	core.ResetTimers()
	defer core.ResetTimers()
	core.SetTime(0)

	gpio := sim.NewGPIO()
	led := core.NewStatusLED(gpio, ledPin)
	require.NoError(t, led.Start())
	led.SetPattern(core.PatternInflight)

	runTicks(1, 32*core.HeartbeatTicks)
	history := gpio.History[ledPin]
	require.Len(t, history, 32)
	assert.Equal(t, history[:16], history[16:])
	assert.Equal(t, core.PatternInflight, led.Pattern())
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/core"
	"quadfc/sim"
)

func newScheduler() (*core.PulseScheduler, *sim.ESC) {
	hw := sim.NewESC()
	s := core.NewPulseScheduler(hw)
	hw.OnCompare(s.OnCompare)
	return s, hw
}

var commandVectors = []core.ESCValues{
	{0, 50, 100, 250},
	{250, 250, 250, 250},
	{0, 0, 0, 0},
	{7, 200, 13, 128},
	{250, 0, 0, 0},
	{1, 1, 0, 249},
}

func TestPulseWidths(t *testing.T) {
	for _, esc := range commandVectors {
		s, hw := newScheduler()
		s.Start(core.ModeInflight, &esc)

		require.Equal(t, uint8(core.ESCPortMask), hw.Port&core.ESCPortMask, "%v", esc)
		require.True(t, hw.CompareEnabled())
		assert.Equal(t, s.Peak()+core.PulseBase, s.Stop())

		hw.Finish()
		assert.Zero(t, hw.Port&core.ESCPortMask)
		assert.False(t, hw.CompareEnabled())
		for c, v := range esc {
			assert.Equal(t, core.PulseBase+int(v), hw.Width(c), "channel %d of %v", c, esc)
			assert.Equal(t, int(s.Stop()), hw.Fall(c), "common stop edge")
		}
		assert.Equal(t, uint32(1), s.Trains())
	}
}

func TestStartOffsets(t *testing.T) {
	for _, esc := range commandVectors {
		peak, starts := core.StartOffsets(&esc)
		assert.Equal(t, uint16(esc.Max())+core.SettleMargin, peak)
		for c, v := range esc {
			assert.LessOrEqual(t, starts[c], peak)
			assert.GreaterOrEqual(t, starts[c], uint16(core.SettleMargin))
			if v == esc.Max() {
				assert.Equal(t, uint16(core.SettleMargin), starts[c])
			}
			if v == 0 {
				assert.Equal(t, peak, starts[c])
			}
		}
	}
}

func TestPulsesPreserveOtherPortBits(t *testing.T) {
	s, hw := newScheduler()
	hw.Port = 0x0b

	esc := core.ESCValues{10, 20, 30, 40}
	s.Start(core.ModeIdle, &esc)
	assert.Equal(t, uint8(0xfb), hw.Port)

	hw.Finish()
	assert.Equal(t, uint8(0x0b), hw.Port)
}

func TestPulsesGatedBelowIdle(t *testing.T) {
	for _, mode := range []core.Mode{core.ModeInit, core.ModeError, core.ModeCalibrate, core.ModeDisarmed} {
		s, hw := newScheduler()
		hw.Port = 0xf3
		hw.ArmCompare(100)

		esc := core.ESCValues{250, 250, 250, 250}
		for i := 0; i < 2; i++ {
			s.Start(mode, &esc)
			assert.Equal(t, uint8(0x03), hw.Port, mode.String())
			assert.False(t, hw.CompareEnabled(), mode.String())
			assert.Zero(t, hw.Reads, mode.String())
		}
		assert.Zero(t, s.Trains())
	}
}

func TestPulsesCancelUnfinishedTrain(t *testing.T) {
	s, hw := newScheduler()
	esc := core.ESCValues{100, 100, 100, 100}
	s.Start(core.ModeInflight, &esc)
	require.True(t, hw.CompareEnabled())

	core.ClearTimingRing()
	s.Start(core.ModeDisarmed, &esc)
	assert.Zero(t, hw.Port&core.ESCPortMask)
	assert.False(t, hw.CompareEnabled())

	events := core.TimingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, uint8(core.EvtPulseSkip), events[0].EventType)
	assert.Equal(t, uint8(core.ModeDisarmed), events[0].Channel)
}

func TestPulsesStalledCounter(t *testing.T) {
	s, hw := newScheduler()
	s.SpinLimit = 1000
	hw.Frozen = true
	core.ClearTimingRing()

	esc := core.ESCValues{10, 20, 30, 40}
	s.Start(core.ModeInflight, &esc)

	assert.Equal(t, 1000, hw.Reads)
	assert.Zero(t, hw.Port&core.ESCPortMask)
	assert.False(t, hw.CompareEnabled())
	assert.Equal(t, uint32(1), s.Stalls())
	assert.Zero(t, s.Trains())

	events := core.TimingEvents()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, uint8(core.EvtESCStall), last.EventType)
	assert.Equal(t, uint32(1000), last.Value1)
}

func TestPulsesNeverRaisedAfterStop(t *testing.T) {
	s, hw := newScheduler()
	hw.Step = 300

	esc := core.ESCValues{}
	s.Start(core.ModeInflight, &esc)

	assert.Equal(t, 1, hw.Compares)
	assert.Equal(t, uint32(1), s.Late())
	assert.Zero(t, hw.Port&core.ESCPortMask)
	for c := 0; c < core.NumESC; c++ {
		assert.Equal(t, -1, hw.Rise(c))
	}
}

func TestDriverRegistry(t *testing.T) {
	t.Cleanup(func() {
		core.SetESCDriver(nil)
		core.SetGPIODriver(nil)
	})

	core.SetESCDriver(nil)
	assert.Nil(t, core.GetESCDriver())
	assert.Panics(t, func() { core.MustESC() })

	hw := sim.NewESC()
	core.SetESCDriver(hw)
	assert.Same(t, hw, core.GetESCDriver())
	assert.Same(t, hw, core.MustESC())

	core.SetGPIODriver(nil)
	assert.Panics(t, func() { core.MustGPIO() })
	gpio := sim.NewGPIO()
	core.SetGPIODriver(gpio)
	assert.Same(t, gpio, core.MustGPIO())
}

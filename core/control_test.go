package core_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/core"
	"quadfc/eeprom"
	"quadfc/sim"
)

type patternLog struct {
	patterns []uint16
}

func (p *patternLog) SetPattern(pattern uint16) {
	p.patterns = append(p.patterns, pattern)
}

type rig struct {
	fc     *core.FlightController
	pulses *core.PulseScheduler
	hw     *sim.ESC
	gyro   *sim.Gyro
	radio  *sim.Receiver
	led    *patternLog
}

func unitGains() eeprom.PIDParams {
	return eeprom.PIDParams{KP: 1, KDiv: 1, UMul: 1, UDiv: 1}
}

func testImage() []byte {
	cfg := &eeprom.Config{
		Roll:       unitGains(),
		Pitch:      unitGains(),
		Yaw:        unitGains(),
		ESCDivisor: 4,
	}
	return cfg.Encode()
}

func newRig(t *testing.T, img []byte) *rig {
	t.Helper()
	core.ResetTimers()
	core.ClearTimingRing()

	r := &rig{
		hw:    sim.NewESC(),
		gyro:  &sim.Gyro{Bias: core.Rates{Roll: 0xffec, Pitch: 10, Yaw: 5}},
		radio: sim.NewReceiver(),
		led:   &patternLog{},
	}
	r.pulses = core.NewPulseScheduler(r.hw)
	r.hw.OnCompare(r.pulses.OnCompare)
	store := eeprom.NewStore(bytes.NewReader(img), 0)
	r.fc = core.NewFlightController(r.gyro, r.radio, store, r.pulses, r.led)
	return r
}

func (r *rig) ticks(n int) {
	for i := 0; i < n; i++ {
		r.fc.Tick()
	}
}

// calibrated brings a fresh rig to DISARMED
func calibrated(t *testing.T) *rig {
	t.Helper()
	r := newRig(t, testImage())
	r.ticks(1 + core.CalibrationCount)
	require.Equal(t, core.ModeDisarmed, r.fc.Mode())
	return r
}

// flying brings a fresh rig to INFLIGHT at the given throttle
func flying(t *testing.T, throttle uint16) *rig {
	t.Helper()
	r := calibrated(t)
	r.radio.Arm()
	r.ticks(1)
	require.Equal(t, core.ModeIdle, r.fc.Mode())
	r.radio.Sticks.Throttle = throttle
	r.ticks(1)
	require.Equal(t, core.ModeInflight, r.fc.Mode())
	return r
}

func TestControlInitLoadsConfig(t *testing.T) {
	r := newRig(t, testImage())
	assert.Equal(t, core.ModeInit, r.fc.Mode())

	r.ticks(1)
	assert.Equal(t, core.ModeCalibrate, r.fc.Mode())
	assert.Equal(t, uint16(4), r.fc.State.ESCDivisor)
	assert.Equal(t, int32(1), r.fc.State.Roll.KP)
	assert.Zero(t, r.gyro.Reads, "no rate reads during INIT")
}

func TestControlConfigFaultIsTerminal(t *testing.T) {
	img := testImage()
	img[0] = 0
	r := newRig(t, img)

	r.ticks(1)
	require.Equal(t, core.ModeError, r.fc.Mode())

	r.radio.Arm()
	r.radio.Sticks.Throttle = 1800
	r.fc.State.ESC.Fill(200)
	r.ticks(50)

	assert.Equal(t, core.ModeError, r.fc.Mode())
	assert.Zero(t, r.hw.Port&core.ESCPortMask)
	assert.False(t, r.hw.CompareEnabled())
	assert.Zero(t, r.hw.Reads)
	assert.Zero(t, r.gyro.Reads)
	assert.False(t, r.fc.SetMode(core.ModeCalibrate))
	assert.Equal(t, []uint16{core.PatternInit, core.PatternError}, r.led.patterns)
}

func TestControlCalibration(t *testing.T) {
	r := newRig(t, testImage())
	r.ticks(core.CalibrationCount)
	assert.Equal(t, core.ModeCalibrate, r.fc.Mode())
	assert.Equal(t, core.CalibrationCount-1, r.fc.Calibration().Count())

	r.ticks(1)
	assert.Equal(t, core.ModeDisarmed, r.fc.Mode())

	roll, pitch, yaw := r.fc.Calibration().Bias()
	assert.Equal(t, int16(-20), roll)
	assert.Equal(t, int16(10), pitch)
	assert.Equal(t, int16(5), yaw)
	assert.Zero(t, r.hw.Reads, "no pulses before arming")
}

func TestControlCalibrationSensorFault(t *testing.T) {
	r := newRig(t, testImage())
	r.ticks(1)
	r.gyro.Fails = core.SensorFaultLimit

	r.ticks(core.SensorFaultLimit - 1)
	assert.Equal(t, core.ModeCalibrate, r.fc.Mode())
	r.ticks(1)
	assert.Equal(t, core.ModeError, r.fc.Mode())
	assert.Equal(t, uint32(core.SensorFaultLimit), r.fc.SensorErrors())
}

func TestControlArmRequiresLowThrottle(t *testing.T) {
	r := calibrated(t)
	r.radio.Sticks.Gear = core.StickMax
	r.radio.Sticks.Throttle = 1500
	r.ticks(5)
	assert.Equal(t, core.ModeDisarmed, r.fc.Mode())

	r.radio.Sticks.Throttle = core.StickMin
	r.ticks(1)
	assert.Equal(t, core.ModeIdle, r.fc.Mode())
}

func TestControlIdleEngage(t *testing.T) {
	r := calibrated(t)
	r.radio.Arm()
	r.ticks(1)
	require.Equal(t, core.ModeIdle, r.fc.Mode())

	r.radio.Sticks.Throttle = 1199
	r.ticks(1)
	assert.Equal(t, core.ModeIdle, r.fc.Mode())
	want := core.ESCValues{}
	want.Fill(core.IdleSpeed)
	assert.Equal(t, want, r.fc.State.ESC)

	r.hw.Finish()
	for c := 0; c < core.NumESC; c++ {
		assert.Equal(t, core.PulseBase+core.IdleSpeed, r.hw.Width(c))
	}

	r.radio.Sticks.Throttle = 1200
	r.ticks(1)
	assert.Equal(t, core.ModeInflight, r.fc.Mode())
	// level sticks, no rotation: the mixer gets throttle minus StickMin,
	// so stick 1200 is 200 over divisor 4
	assert.Equal(t, core.ESCValues{50, 50, 50, 50}, r.fc.State.ESC)
}

func TestControlRollCorrection(t *testing.T) {
	r := flying(t, 1400)
	r.gyro.Rate[0] = 40
	r.ticks(1)

	// rolling right with the stick centred: error -40 lifts the right side
	assert.Equal(t, core.ESCValues{110, 90, 110, 90}, r.fc.State.ESC)
	r.hw.Finish()
	assert.Equal(t, core.PulseBase+110, r.hw.Width(core.ESCFrontRight))
	assert.Equal(t, core.PulseBase+90, r.hw.Width(core.ESCFrontLeft))
}

func TestControlStickCommandsRate(t *testing.T) {
	r := flying(t, 1400)
	r.radio.Sticks.Pitch = core.StickCenter + 40
	r.ticks(1)
	assert.Equal(t, core.ESCValues{110, 110, 90, 90}, r.fc.State.ESC)
}

func TestControlDisarmStopsPulses(t *testing.T) {
	r := flying(t, 1600)
	r.radio.Disarm()
	r.ticks(1)

	assert.Equal(t, core.ModeDisarmed, r.fc.Mode())
	assert.Equal(t, core.ESCValues{}, r.fc.State.ESC)
	assert.Zero(t, r.hw.Port&core.ESCPortMask)
	assert.False(t, r.hw.CompareEnabled())

	// rearming goes through IDLE again
	r.radio.Arm()
	r.ticks(1)
	assert.Equal(t, core.ModeIdle, r.fc.Mode())
}

func TestControlSensorErrorsKeepLastRates(t *testing.T) {
	r := flying(t, 1400)
	r.gyro.Rate[1] = 12
	r.ticks(1)
	rates := r.fc.State.Rates

	r.gyro.Rate[1] = -300
	r.gyro.Fails = 3
	r.ticks(3)

	assert.Equal(t, core.ModeInflight, r.fc.Mode())
	assert.Equal(t, rates, r.fc.State.Rates)
	assert.Equal(t, uint32(3), r.fc.SensorErrors())
}

func TestControlRefusesIllegalTransitions(t *testing.T) {
	r := newRig(t, testImage())
	assert.False(t, r.fc.SetMode(core.ModeInflight))
	assert.Equal(t, core.ModeInit, r.fc.Mode())
	assert.True(t, r.fc.SetMode(core.ModeInit))
}

func TestControlLogsTransitions(t *testing.T) {
	var lines []string
	core.SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer core.SetDebugWriter(func(string) {})

	r := flying(t, 1300)
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "[FC] mode INIT -> CALIBRATE")
	assert.Contains(t, out, "[FC] gyro bias -20 10 5")
	assert.Contains(t, out, "[FC] mode IDLE -> INFLIGHT")

	assert.Equal(t, []uint16{
		core.PatternInit,
		core.PatternCalibrate,
		core.PatternDisarmed,
		core.PatternIdle,
		core.PatternInflight,
	}, r.led.patterns)

	var modes []uint8
	for _, evt := range core.TimingEvents() {
		if evt.EventType == core.EvtModeChange {
			modes = append(modes, evt.Channel)
		}
	}
	assert.Equal(t, []uint8{
		uint8(core.ModeCalibrate),
		uint8(core.ModeDisarmed),
		uint8(core.ModeIdle),
		uint8(core.ModeInflight),
	}, modes)
}

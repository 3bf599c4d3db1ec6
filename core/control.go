package core

// Stick thresholds and the idle command
const (
	ArmThreshold     = 1500   // Gear channel at or above arms the craft
	EngageThreshold  = 1200   // Throttle at or above leaves IDLE for INFLIGHT
	IdleSpeed        = 25     // Command held on every rotor while IDLE
	SensorFaultLimit = TickHz // Consecutive failed reads that abort calibration
)

// ControlState is everything the control loop mutates, once per tick
type ControlState struct {
	Mode   Mode
	Sticks Sticks
	Rates  Rates

	Roll, Pitch, Yaw PID

	ESCDivisor uint16
	ESC        ESCValues
}

// FlightController runs the control loop: read the sensor and receiver,
// step the mode machine, compute ESC commands and emit the pulse train.
type FlightController struct {
	State ControlState

	sensor    RateSensor
	receiver  Receiver
	store     ConfigStore
	pulses    *PulseScheduler
	indicator Indicator

	cal Calibrator

	ticks        uint32
	sensorErrors uint32
	sensorRun    uint32
}

// NewFlightController wires the loop to its collaborators. indicator may be nil.
func NewFlightController(sensor RateSensor, receiver Receiver, store ConfigStore,
	pulses *PulseScheduler, indicator Indicator) *FlightController {
	fc := &FlightController{
		sensor:    sensor,
		receiver:  receiver,
		store:     store,
		pulses:    pulses,
		indicator: indicator,
	}
	fc.State.Mode = ModeInit
	fc.State.Sticks = DefaultSticks()
	if indicator != nil {
		indicator.SetPattern(ModeInit.Pattern())
	}
	return fc
}

// Mode returns the current mode
func (fc *FlightController) Mode() Mode {
	return fc.State.Mode
}

// Ticks returns the number of control ticks run
func (fc *FlightController) Ticks() uint32 {
	return fc.ticks
}

// SensorErrors returns the total number of failed rate reads
func (fc *FlightController) SensorErrors() uint32 {
	return fc.sensorErrors
}

// Calibration returns the gyro calibration state
func (fc *FlightController) Calibration() *Calibrator {
	return &fc.cal
}

// Tick runs one control period
func (fc *FlightController) Tick() {
	s := &fc.State

	fc.ticks++
	SetTime(fc.ticks)

	fc.receiver.ReadSticks(&s.Sticks)
	if s.Mode != ModeInit && s.Mode != ModeError {
		fc.readRates()
	}

	switch s.Mode {
	case ModeInit:
		fc.initialize()
	case ModeCalibrate:
		fc.calibrate()
	case ModeDisarmed:
		s.ESC.Fill(0)
		if s.Sticks.Gear >= ArmThreshold && s.Sticks.Throttle < EngageThreshold {
			fc.SetMode(ModeIdle)
			s.ESC.Fill(IdleSpeed)
		}
	case ModeIdle:
		switch {
		case s.Sticks.Gear < ArmThreshold:
			fc.SetMode(ModeDisarmed)
		case s.Sticks.Throttle >= EngageThreshold:
			fc.SetMode(ModeInflight)
			fc.fly()
		default:
			s.ESC.Fill(IdleSpeed)
		}
	case ModeInflight:
		if s.Sticks.Gear < ArmThreshold {
			fc.SetMode(ModeDisarmed)
		} else {
			fc.fly()
		}
	}

	fc.pulses.Start(s.Mode, &s.ESC)
	ProcessTimers()
}

// SetMode moves the mode machine to the given mode. Transitions the machine
// does not allow are refused and logged; the return value reports whether
// the controller is now in the requested mode.
func (fc *FlightController) SetMode(to Mode) bool {
	s := &fc.State
	from := s.Mode
	if from == to {
		return true
	}
	if !CanTransition(from, to) {
		ConsolePrintln("[FC] refused " + from.String() + " -> " + to.String())
		return false
	}

	s.Mode = to
	RecordTiming(EvtModeChange, uint8(to), fc.ticks, uint32(from), 0)
	ConsolePrintln("[FC] mode " + from.String() + " -> " + to.String())
	if fc.indicator != nil {
		fc.indicator.SetPattern(to.Pattern())
	}

	switch to {
	case ModeInflight:
		s.Roll.Reset()
		s.Pitch.Reset()
		s.Yaw.Reset()
	case ModeDisarmed:
		s.ESC.Fill(0)
	case ModeError:
		s.ESC.Fill(0)
		DumpTimingRing()
	}
	return true
}

func (fc *FlightController) initialize() {
	s := &fc.State
	cfg, err := fc.store.Load()
	if err != nil {
		ConsolePrintln("[FC] config load failed: " + err.Error())
		RecordTiming(EvtConfigError, uint8(s.Mode), fc.ticks, 0, 0)
		fc.SetMode(ModeError)
		return
	}

	s.Roll.Configure(cfg.Roll)
	s.Pitch.Configure(cfg.Pitch)
	s.Yaw.Configure(cfg.Yaw)
	s.ESCDivisor = cfg.ESCDivisor
	fc.cal.Reset()
	fc.SetMode(ModeCalibrate)
}

func (fc *FlightController) readRates() {
	rates, err := fc.sensor.ReadRates()
	if err != nil {
		fc.sensorErrors++
		fc.sensorRun++
		RecordTiming(EvtSensorError, uint8(fc.State.Mode), fc.ticks, fc.sensorRun, 0)
		return
	}
	fc.sensorRun = 0
	fc.State.Rates = rates
}

func (fc *FlightController) calibrate() {
	if fc.sensorRun > 0 {
		if fc.sensorRun >= SensorFaultLimit {
			ConsolePrintln("[FC] gyro not responding")
			fc.SetMode(ModeError)
		}
		return
	}
	if fc.cal.Add(fc.State.Rates) {
		roll, pitch, yaw := fc.cal.Bias()
		ConsolePrintln("[FC] gyro bias " + itoa(int(roll)) + " " + itoa(int(pitch)) + " " + itoa(int(yaw)))
		fc.SetMode(ModeDisarmed)
	}
}

// fly runs the three rate loops and the mixer
func (fc *FlightController) fly() {
	s := &fc.State
	biasRoll, biasPitch, biasYaw := fc.cal.Bias()

	uRoll := s.Roll.Update(rateError(s.Sticks.Roll, s.Rates.Roll, biasRoll))
	uPitch := s.Pitch.Update(rateError(s.Sticks.Pitch, s.Rates.Pitch, biasPitch))
	uYaw := s.Yaw.Update(rateError(s.Sticks.Yaw, s.Rates.Yaw, biasYaw))

	throttle := int32(s.Sticks.Throttle) - StickMin
	s.ESC = Mix(throttle, uRoll, uPitch, uYaw, int32(s.ESCDivisor))

	DebugAsync("[FC] esc " + itoa(int(s.ESC[ESCFrontRight])) + " " + itoa(int(s.ESC[ESCFrontLeft])) +
		" " + itoa(int(s.ESC[ESCRearRight])) + " " + itoa(int(s.ESC[ESCRearLeft])))
}

// rateError is the commanded rate minus the bias-corrected measured rate
func rateError(stick, rate uint16, bias int16) int32 {
	reference := int32(stick) - StickCenter
	measured := int32(int16(rate)) - int32(bias)
	return reference - measured
}

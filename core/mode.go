package core

// Mode is the flight controller operating mode. The order matters:
// actuation is only permitted from ModeIdle upward.
type Mode uint8

const (
	ModeInit Mode = iota
	ModeError
	ModeCalibrate
	ModeDisarmed
	ModeIdle
	ModeInflight
)

// Heartbeat patterns, shifted out MSB first
const (
	PatternInit      uint16 = 0xff00
	PatternError     uint16 = 0xaaaa
	PatternCalibrate uint16 = 0xcccc
	PatternDisarmed  uint16 = 0x8000
	PatternIdle      uint16 = 0xf0f0
	PatternInflight  uint16 = 0x00f7
)

func (m Mode) String() string {
	switch m {
	case ModeInit:
		return "INIT"
	case ModeError:
		return "ERROR"
	case ModeCalibrate:
		return "CALIBRATE"
	case ModeDisarmed:
		return "DISARMED"
	case ModeIdle:
		return "IDLE"
	case ModeInflight:
		return "INFLIGHT"
	default:
		return "MODE(" + itoa(int(m)) + ")"
	}
}

// Armed reports whether pulses may be emitted in this mode
func (m Mode) Armed() bool {
	return m >= ModeIdle && m <= ModeInflight
}

// Pattern returns the heartbeat pattern shown while in this mode
func (m Mode) Pattern() uint16 {
	switch m {
	case ModeInit:
		return PatternInit
	case ModeCalibrate:
		return PatternCalibrate
	case ModeDisarmed:
		return PatternDisarmed
	case ModeIdle:
		return PatternIdle
	case ModeInflight:
		return PatternInflight
	default:
		return PatternError
	}
}

// CanTransition reports whether the mode machine allows from -> to.
// ERROR is terminal; stepping back from IDLE or INFLIGHT always lands on DISARMED.
func CanTransition(from, to Mode) bool {
	switch from {
	case ModeInit:
		return to == ModeCalibrate || to == ModeError
	case ModeCalibrate:
		return to == ModeDisarmed || to == ModeError
	case ModeDisarmed:
		return to == ModeIdle
	case ModeIdle:
		return to == ModeInflight || to == ModeDisarmed
	case ModeInflight:
		return to == ModeDisarmed
	default:
		return false
	}
}

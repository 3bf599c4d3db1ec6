package core

import "quadfc/eeprom"

// Stick channel range, in receiver device units
const (
	StickMin    = 1000
	StickCenter = 1500
	StickMax    = 2000
	NumAux      = 7
)

// Sticks holds the receiver channel values
type Sticks struct {
	Throttle uint16
	Roll     uint16
	Pitch    uint16
	Yaw      uint16
	Gear     uint16
	Aux      [NumAux]uint16
}

// Rates holds raw gyro output. Values are two's complement words; the
// control arithmetic reinterprets them as signed.
type Rates struct {
	Roll, Pitch, Yaw uint16
}

// RateSensor produces the current angular rates
type RateSensor interface {
	ReadRates() (Rates, error)
}

// Receiver fills in the current stick and channel values
type Receiver interface {
	ReadSticks(s *Sticks)
}

// ConfigStore loads the persistent configuration in one step
type ConfigStore interface {
	Load() (*eeprom.Config, error)
}

// Indicator shows the pattern selected by the current mode
type Indicator interface {
	SetPattern(pattern uint16)
}

// DefaultSticks are the values read before any radio data arrives:
// throttle, gear and aux channels at minimum, attitude sticks centred.
func DefaultSticks() Sticks {
	s := Sticks{
		Throttle: StickMin,
		Roll:     StickCenter,
		Pitch:    StickCenter,
		Yaw:      StickCenter,
		Gear:     StickMin,
	}
	for i := range s.Aux {
		s.Aux[i] = StickMin
	}
	return s
}

// IdleReceiver always reports DefaultSticks. Targets without a radio driver
// use it, which keeps the craft disarmed.
type IdleReceiver struct{}

func (IdleReceiver) ReadSticks(s *Sticks) {
	*s = DefaultSticks()
}

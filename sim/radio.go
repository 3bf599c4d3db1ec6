package sim

import (
	"errors"

	"quadfc/core"
)

// Receiver is a core.Receiver whose sticks are set directly by the test
type Receiver struct {
	Sticks core.Sticks
}

func NewReceiver() *Receiver {
	return &Receiver{Sticks: core.DefaultSticks()}
}

func (r *Receiver) ReadSticks(s *core.Sticks) {
	*s = r.Sticks
}

// Arm moves the gear switch up and holds the throttle at minimum
func (r *Receiver) Arm() {
	r.Sticks.Gear = core.StickMax
	r.Sticks.Throttle = core.StickMin
}

// Disarm moves the gear switch down
func (r *Receiver) Disarm() {
	r.Sticks.Gear = core.StickMin
}

var ErrGyroOffline = errors.New("sim: gyro offline")

// Gyro is a core.RateSensor reporting a fixed bias plus a settable rate
type Gyro struct {
	Bias  core.Rates
	Rate  [3]int16
	Fails int // Number of upcoming reads that fail

	Reads int
}

func (g *Gyro) ReadRates() (core.Rates, error) {
	g.Reads++
	if g.Fails > 0 {
		g.Fails--
		return core.Rates{}, ErrGyroOffline
	}
	return core.Rates{
		Roll:  uint16(int16(g.Bias.Roll) + g.Rate[0]),
		Pitch: uint16(int16(g.Bias.Pitch) + g.Rate[1]),
		Yaw:   uint16(int16(g.Bias.Yaw) + g.Rate[2]),
	}, nil
}

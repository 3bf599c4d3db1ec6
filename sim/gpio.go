package sim

import (
	"errors"

	"quadfc/core"
)

var ErrPinNotConfigured = errors.New("sim: pin not configured as output")

// GPIO is an in-memory core.GPIODriver that remembers every level written
type GPIO struct {
	pins    map[core.GPIOPin]bool
	History map[core.GPIOPin][]bool
}

func NewGPIO() *GPIO {
	return &GPIO{
		pins:    make(map[core.GPIOPin]bool),
		History: make(map[core.GPIOPin][]bool),
	}
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.pins[pin] = false
	return nil
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	if _, ok := g.pins[pin]; !ok {
		return ErrPinNotConfigured
	}
	g.pins[pin] = value
	g.History[pin] = append(g.History[pin], value)
	return nil
}

func (g *GPIO) GetPin(pin core.GPIOPin) (bool, error) {
	v, ok := g.pins[pin]
	if !ok {
		return false, ErrPinNotConfigured
	}
	return v, nil
}

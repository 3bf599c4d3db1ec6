package core

// HeartbeatTicks is the number of control ticks each pattern bit is shown
const HeartbeatTicks = 16

// StatusLED shows the mode heartbeat on a GPIO pin. The pattern is rotated
// left once per HeartbeatTicks and its top bit drives the LED.
type StatusLED struct {
	gpio    GPIODriver
	pin     GPIOPin
	pattern uint16
	timer   Timer
}

// NewStatusLED creates a heartbeat on the given pin
func NewStatusLED(gpio GPIODriver, pin GPIOPin) *StatusLED {
	l := &StatusLED{
		gpio:    gpio,
		pin:     pin,
		pattern: PatternInit,
	}
	l.timer.Handler = l.step
	return l
}

// Start configures the pin and schedules the heartbeat on the tick clock
func (l *StatusLED) Start() error {
	if err := l.gpio.ConfigureOutput(l.pin); err != nil {
		return err
	}
	l.timer.WakeTime = GetTime() + HeartbeatTicks
	ScheduleTimer(&l.timer)
	return nil
}

// Stop cancels the heartbeat and turns the LED off
func (l *StatusLED) Stop() {
	CancelTimer(&l.timer)
	l.gpio.SetPin(l.pin, false)
}

// SetPattern selects the pattern shown from the next heartbeat step
func (l *StatusLED) SetPattern(pattern uint16) {
	l.pattern = pattern
}

// Pattern returns the pattern in its current rotation
func (l *StatusLED) Pattern() uint16 {
	return l.pattern
}

func (l *StatusLED) step(t *Timer) uint8 {
	bit := l.pattern >> 15
	l.gpio.SetPin(l.pin, bit != 0)
	l.pattern = l.pattern<<1 | bit

	t.WakeTime += HeartbeatTicks
	return SF_RESCHEDULE
}

package core

// Control loop timing
const (
	TickHz       = 250 // Control loop rate
	TickPeriodUS = 1000000 / TickHz
)

var (
	systemTicks uint32
	bootTick    uint32 // Tick count when the loop started
)

// GetTime returns the current control tick count
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current tick count (the control loop owns this clock)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns the number of ticks since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTick
}

// TicksFromMS converts milliseconds to control ticks, rounding down
func TicksFromMS(ms uint32) uint32 {
	return ms * TickHz / 1000
}

// TicksToMS converts control ticks to milliseconds
func TicksToMS(ticks uint32) uint32 {
	return ticks * 1000 / TickHz
}

// TimerInit marks the start of the control loop
func TimerInit() {
	bootTick = GetTime()
}

// ProcessTimers runs every housekeeping timer that is due at the current tick
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}

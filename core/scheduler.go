package core

// Timer is a housekeeping event woken by the control tick clock.
// Handlers run on the main loop, after pulse scheduling for the tick.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList   *Timer
	currentTime uint32
)

// ScheduleTimer adds a timer to the schedule
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	insertTimer(t)
}

// CancelTimer removes a timer if it is scheduled
func CancelTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if timerList == t {
		timerList = t.Next
		t.Next = nil
		return
	}
	for cur := timerList; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return
		}
	}
}

// ResetTimers drops every scheduled timer
func ResetTimers() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for timerList != nil {
		t := timerList
		timerList = t.Next
		t.Next = nil
	}
}

// insertTimer keeps the list sorted by WakeTime; equal wake times run in insertion order
func insertTimer(t *Timer) {
	if timerList == nil || t.WakeTime < timerList.WakeTime {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// TimerDispatch runs due timers
func TimerDispatch() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for timerList != nil && timerList.WakeTime <= currentTime {
		timer := timerList
		timerList = timer.Next
		timer.Next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			insertTimer(timer)
		}
	}
}

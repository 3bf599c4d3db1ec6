package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerDispatchOrder(t *testing.T) {
	ResetTimers()
	defer ResetTimers()
	SetTime(0)

	var fired []string
	mk := func(name string, wake uint32) *Timer {
		return &Timer{
			WakeTime: wake,
			Handler: func(*Timer) uint8 {
				fired = append(fired, name)
				return SF_DONE
			},
		}
	}

	ScheduleTimer(mk("c", 30))
	ScheduleTimer(mk("a", 10))
	ScheduleTimer(mk("b1", 20))
	ScheduleTimer(mk("b2", 20))

	SetTime(5)
	ProcessTimers()
	assert.Empty(t, fired)

	SetTime(20)
	ProcessTimers()
	assert.Equal(t, []string{"a", "b1", "b2"}, fired)

	SetTime(100)
	ProcessTimers()
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, fired)
}

func TestTimerReschedule(t *testing.T) {
	ResetTimers()
	defer ResetTimers()
	SetTime(0)

	count := 0
	timer := &Timer{
		WakeTime: 4,
		Handler: func(t *Timer) uint8 {
			count++
			t.WakeTime += 4
			return SF_RESCHEDULE
		},
	}
	ScheduleTimer(timer)

	for tick := uint32(1); tick <= 20; tick++ {
		SetTime(tick)
		ProcessTimers()
	}
	assert.Equal(t, 5, count)

	CancelTimer(timer)
	SetTime(40)
	ProcessTimers()
	assert.Equal(t, 5, count)
}

func TestTimerCancelMiddle(t *testing.T) {
	ResetTimers()
	defer ResetTimers()
	SetTime(0)

	ran := map[uint32]bool{}
	timers := make([]*Timer, 3)
	for i := range timers {
		timers[i] = &Timer{
			WakeTime: uint32(i + 1),
			Handler: func(t *Timer) uint8 {
				ran[t.WakeTime] = true
				return SF_DONE
			},
		}
		ScheduleTimer(timers[i])
	}
	CancelTimer(timers[1])

	SetTime(10)
	ProcessTimers()
	assert.Equal(t, map[uint32]bool{1: true, 3: true}, ran)
}

func TestTickConversions(t *testing.T) {
	assert.Equal(t, uint32(250), TicksFromMS(1000))
	assert.Equal(t, uint32(1), TicksFromMS(4))
	assert.Equal(t, uint32(4000), TicksToMS(1000))

	SetTime(100)
	TimerInit()
	SetTime(130)
	assert.Equal(t, uint32(30), GetUptime())
}

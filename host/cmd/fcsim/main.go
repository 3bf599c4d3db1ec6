package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"quadfc/core"
	"quadfc/eeprom"
	"quadfc/host/config"
	"quadfc/sim"
)

var (
	configFile  = flag.String("config", "", "JSON tuning file (stock gains when empty)")
	duration    = flag.Uint("seconds", 20, "Simulated flight time")
	reportEvery = flag.Uint("report", 250, "Ticks between ESC reports")
	verbose     = flag.Bool("verbose", false, "Print per-tick debug output")
	corrupt     = flag.Bool("corrupt", false, "Corrupt the configuration marker")
	disturb     = flag.Int("disturb", 200, "Roll rate disturbance in gyro LSB")
)

// step is a scripted pilot action
type step struct {
	at     uint32
	what   string
	action func(radio *sim.Receiver, gyro *sim.Gyro)
}

func script() []step {
	cal := uint32(core.CalibrationCount + 10)
	return []step{
		{cal, "gear up", func(r *sim.Receiver, g *sim.Gyro) { r.Arm() }},
		{cal + 250, "throttle 1300", func(r *sim.Receiver, g *sim.Gyro) { r.Sticks.Throttle = 1300 }},
		{cal + 500, "roll disturbance", func(r *sim.Receiver, g *sim.Gyro) { g.Rate[0] = int16(*disturb) }},
		{cal + 750, "disturbance gone", func(r *sim.Receiver, g *sim.Gyro) { g.Rate[0] = 0 }},
		{cal + 1000, "yaw right", func(r *sim.Receiver, g *sim.Gyro) { r.Sticks.Yaw = 1600 }},
		{cal + 1250, "yaw centre, throttle 1600", func(r *sim.Receiver, g *sim.Gyro) {
			r.Sticks.Yaw = core.StickCenter
			r.Sticks.Throttle = 1600
		}},
		{cal + 1750, "gyro dropout", func(r *sim.Receiver, g *sim.Gyro) { g.Fails = 5 }},
		{cal + 2000, "gear down", func(r *sim.Receiver, g *sim.Gyro) { r.Disarm() }},
	}
}

func main() {
	flag.Parse()

	tune := config.DefaultTuneConfig()
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if tune, err = config.LoadConfig(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse %s: %v\n", *configFile, err)
			os.Exit(1)
		}
	}
	fw, err := tune.Firmware()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	img := fw.Encode()
	if *corrupt {
		img[0] ^= 0xff
	}

	core.SetDebugWriter(func(s string) { fmt.Println(s) })
	core.SetDebugEnabled(*verbose)

	hw := sim.NewESC()
	pulses := core.NewPulseScheduler(hw)
	hw.OnCompare(pulses.OnCompare)
	radio := sim.NewReceiver()
	gyro := &sim.Gyro{Bias: core.Rates{Roll: 12, Pitch: 0xfff6, Yaw: 3}}

	gpio := sim.NewGPIO()
	led := core.NewStatusLED(gpio, 25)
	if err := led.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fc := core.NewFlightController(gyro, radio, eeprom.NewStore(bytes.NewReader(img), 0), pulses, led)
	core.TimerInit()

	steps := script()
	total := uint32(*duration) * core.TickHz
	for tick := uint32(1); tick <= total; tick++ {
		for len(steps) > 0 && steps[0].at == tick {
			fmt.Printf("t=%6.2fs pilot: %s\n", seconds(tick), steps[0].what)
			steps[0].action(radio, gyro)
			steps = steps[1:]
		}

		fc.Tick()
		hw.Finish()

		if *reportEvery > 0 && tick%uint32(*reportEvery) == 0 && fc.Mode().Armed() {
			report(tick, fc, hw)
		}
	}

	fmt.Printf("%d ticks, mode %s, %d trains, %d stalls, %d late, %d sensor errors\n",
		fc.Ticks(), fc.Mode(), pulses.Trains(), pulses.Stalls(), pulses.Late(), fc.SensorErrors())
	core.DumpTimingRing()
}

func seconds(tick uint32) float64 {
	return float64(tick) / core.TickHz
}

func report(tick uint32, fc *core.FlightController, hw *sim.ESC) {
	esc := fc.State.ESC
	fmt.Printf("t=%6.2fs %-8s esc fr %3d fl %3d rr %3d rl %3d  pulse us",
		seconds(tick), fc.Mode(), esc[core.ESCFrontRight], esc[core.ESCFrontLeft],
		esc[core.ESCRearRight], esc[core.ESCRearLeft])
	for c := 0; c < core.NumESC; c++ {
		fmt.Printf(" %4d", hw.Width(c)*core.QuantumUS)
	}
	fmt.Println()
}

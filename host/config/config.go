// Package config reads the host-side tuning file: decimal PID gains per
// axis and the ESC divisor, turned into an EEPROM image for the firmware.
package config

import (
	"encoding/json"
	"fmt"

	"quadfc/eeprom"
)

// AxisGains are the decimal gains for one rate loop
type AxisGains struct {
	KP float64 `json:"kp"`
	KI float64 `json:"ki"`
	KD float64 `json:"kd"`
}

// TuneConfig is the JSON tuning file
type TuneConfig struct {
	Roll       AxisGains `json:"roll"`
	Pitch      AxisGains `json:"pitch"`
	Yaw        AxisGains `json:"yaw"`
	ESCDivisor uint16    `json:"esc_divisor"`
}

// DefaultESCDivisor maps the 0..1000 throttle span onto 0..250
const DefaultESCDivisor = 4

// LoadConfig parses a JSON tuning file and applies defaults
func LoadConfig(jsonData []byte) (*TuneConfig, error) {
	var config TuneConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// applyDefaults fills axes left out of the file with the stock gains
func applyDefaults(config *TuneConfig) {
	defaults := DefaultTuneConfig()

	if config.Roll == (AxisGains{}) {
		config.Roll = defaults.Roll
	}
	if config.Pitch == (AxisGains{}) {
		config.Pitch = defaults.Pitch
	}
	if config.Yaw == (AxisGains{}) {
		config.Yaw = defaults.Yaw
	}
	if config.ESCDivisor == 0 {
		config.ESCDivisor = DefaultESCDivisor
	}
}

// DefaultTuneConfig returns the stock tuning
func DefaultTuneConfig() *TuneConfig {
	return &TuneConfig{
		Roll:       AxisGains{KP: 1.013, KI: 0.3335, KD: 0.2},
		Pitch:      AxisGains{KP: 1.013, KI: 0.1, KD: 0.2},
		Yaw:        AxisGains{KP: 1.013, KI: 0.1, KD: 0.2},
		ESCDivisor: DefaultESCDivisor,
	}
}

// Firmware converts the decimal gains into the fixed-point configuration
func (c *TuneConfig) Firmware() (*eeprom.Config, error) {
	cfg := &eeprom.Config{ESCDivisor: c.ESCDivisor}

	axes := []struct {
		name  string
		gains AxisGains
		out   *eeprom.PIDParams
	}{
		{"roll", c.Roll, &cfg.Roll},
		{"pitch", c.Pitch, &cfg.Pitch},
		{"yaw", c.Yaw, &cfg.Yaw},
	}
	for _, axis := range axes {
		params, err := eeprom.Rationalize(axis.gains.KP, axis.gains.KI, axis.gains.KD)
		if err != nil {
			return nil, fmt.Errorf("%s gains: %w", axis.name, err)
		}
		*axis.out = params
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

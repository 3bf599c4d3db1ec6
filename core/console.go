package core

import (
	"bytes"
	"strings"

	"quadfc/eeprom"
)

// ImageWriter persists a configuration image
type ImageWriter interface {
	WriteImage(img []byte) error
}

const (
	consoleLineMax = 96
	consoleHexMax  = 1024
)

// Console handles the operator's serial lines: a few status commands and
// configuration uploads as Intel HEX. It runs on the main loop between ticks.
type Console struct {
	fc     *FlightController
	pulses *PulseScheduler
	store  ImageWriter

	line     []byte
	overflow bool
	hex      []byte
	tooLarge bool
}

// NewConsole creates a console. store may be nil, which disables uploads.
func NewConsole(fc *FlightController, pulses *PulseScheduler, store ImageWriter) *Console {
	return &Console{
		fc:     fc,
		pulses: pulses,
		store:  store,
		line:   make([]byte, 0, consoleLineMax),
	}
}

// Feed consumes one received byte
func (c *Console) Feed(b byte) {
	switch b {
	case '\r':
	case '\n':
		if c.overflow {
			ConsolePrintln("[CON] line too long")
		} else {
			c.handleLine(strings.TrimSpace(string(c.line)))
		}
		c.line = c.line[:0]
		c.overflow = false
	default:
		if len(c.line) == consoleLineMax {
			c.overflow = true
			return
		}
		c.line = append(c.line, b)
	}
}

func (c *Console) handleLine(line string) {
	if strings.HasPrefix(line, ":") {
		c.hexLine(line)
		return
	}

	switch line {
	case "":
	case "status":
		ConsolePrintln("[CON] mode " + c.fc.Mode().String() +
			" ticks " + utoa(c.fc.Ticks()) +
			" sensor_errors " + utoa(c.fc.SensorErrors()))
		ConsolePrintln("[CON] trains " + utoa(c.pulses.Trains()) +
			" stalls " + utoa(c.pulses.Stalls()) +
			" late " + utoa(c.pulses.Late()))
	case "timing":
		DumpTimingRing()
	case "debug on":
		SetDebugEnabled(true)
	case "debug off":
		SetDebugEnabled(false)
	default:
		ConsolePrintln("[CON] unknown command: " + line)
	}
}

func (c *Console) hexLine(line string) {
	eof := len(line) >= 9 && line[7:9] == "01"

	// an oversized upload drops every record up to its end-of-file record
	if c.tooLarge || len(c.hex)+len(line)+1 > consoleHexMax {
		c.hex = c.hex[:0]
		c.tooLarge = !eof
		if eof {
			ConsolePrintln("[CFG] rejected: image too large")
		}
		return
	}
	c.hex = append(c.hex, line...)
	c.hex = append(c.hex, '\n')

	if eof {
		c.commit()
	}
}

func (c *Console) commit() {
	text := c.hex
	c.hex = nil

	if c.store == nil {
		ConsolePrintln("[CFG] rejected: no store")
		return
	}
	if c.fc.Mode().Armed() {
		ConsolePrintln("[CFG] rejected: armed")
		return
	}
	img, err := eeprom.ReadHex(bytes.NewReader(text))
	if err == nil {
		_, err = eeprom.Decode(img)
	}
	if err == nil {
		err = c.store.WriteImage(img)
	}
	if err != nil {
		ConsolePrintln("[CFG] rejected: " + err.Error())
		return
	}
	ConsolePrintln("[CFG] stored " + itoa(len(img)) + " bytes, reset to apply")
}

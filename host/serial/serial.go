// Package serial talks to the flight controller console over a serial port.
package serial

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"quadfc/eeprom"
)

// Port represents a serial port interface, so tests can swap in a pipe
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (the console runs at 115200; USB CDC ignores it)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the console configuration
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 2000,
	}
}

// Console prefixes of the configuration upload replies
const (
	replyStored   = "[CFG] stored"
	replyRejected = "[CFG] rejected"
)

// Upload streams an EEPROM image as Intel HEX and waits for the firmware
// to acknowledge it. Other console lines are passed to echo, if set.
func Upload(p Port, img []byte, echo func(string)) error {
	if err := eeprom.WriteHex(p, img); err != nil {
		return fmt.Errorf("send image: %w", err)
	}
	if err := p.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	scanner := bufio.NewScanner(p)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, replyStored):
			return nil
		case strings.HasPrefix(line, replyRejected):
			return fmt.Errorf("firmware %s", strings.TrimPrefix(line, "[CFG] "))
		case echo != nil && line != "":
			echo(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read reply: %w", err)
	}
	return fmt.Errorf("no reply from firmware")
}

// Package eeprom decodes the flight controller's persistent configuration.
//
// The image is a sequence of little-endian 16-bit words:
//
//	word 0       validity marker (0x55AA)
//	words 1-8    roll PID:  kp ki kd k_div 0 0 u_mul u_div
//	words 9-16   pitch PID
//	words 17-24  yaw PID
//	word 25      ESC divisor
//	word 26      CRC16 of words 0-25
//
// The two zero words in each PID block are where the controller keeps its
// runtime integrator and previous error; they are written as zero and ignored
// on load.
package eeprom

import (
	"encoding/binary"
	"errors"
	"io"
)

// Marker is the validity marker stored in word 0
const Marker = 0x55AA

// Image layout, in words
const (
	wordMarker     = 0
	wordRoll       = 1
	wordPitch      = 9
	wordYaw        = 17
	wordESCDivisor = 25
	wordChecksum   = 26

	pidWords   = 8
	ImageWords = 27
	ImageSize  = ImageWords * 2
)

var (
	ErrShortImage   = errors.New("eeprom: image too short")
	ErrNoMarker     = errors.New("eeprom: validity marker missing")
	ErrChecksum     = errors.New("eeprom: checksum mismatch")
	ErrZeroDivisor  = errors.New("eeprom: zero divisor")
	ErrGainOverflow = errors.New("eeprom: gain does not fit a 16-bit word")
)

// PIDParams holds one axis' fixed-point gains
type PIDParams struct {
	KP, KI, KD int16
	KDiv       uint16 // Shared divisor for the three gains
	UMul, UDiv uint16 // Output rescale
}

// Config is the complete configuration, decoded in one step
type Config struct {
	Roll, Pitch, Yaw PIDParams
	ESCDivisor       uint16
}

// Validate rejects configurations that would divide by zero at runtime
func (c *Config) Validate() error {
	for _, p := range []*PIDParams{&c.Roll, &c.Pitch, &c.Yaw} {
		if p.KDiv == 0 || p.UDiv == 0 {
			return ErrZeroDivisor
		}
	}
	if c.ESCDivisor == 0 {
		return ErrZeroDivisor
	}
	return nil
}

// Decode parses and validates an image
func Decode(img []byte) (*Config, error) {
	if len(img) < ImageSize {
		return nil, ErrShortImage
	}
	if word(img, wordMarker) != Marker {
		return nil, ErrNoMarker
	}
	if word(img, wordChecksum) != Checksum(img[:wordChecksum*2]) {
		return nil, ErrChecksum
	}

	cfg := &Config{
		Roll:       decodePID(img, wordRoll),
		Pitch:      decodePID(img, wordPitch),
		Yaw:        decodePID(img, wordYaw),
		ESCDivisor: word(img, wordESCDivisor),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode renders the configuration as an image, checksum included
func (c *Config) Encode() []byte {
	img := make([]byte, ImageSize)
	putWord(img, wordMarker, Marker)
	encodePID(img, wordRoll, &c.Roll)
	encodePID(img, wordPitch, &c.Pitch)
	encodePID(img, wordYaw, &c.Yaw)
	putWord(img, wordESCDivisor, c.ESCDivisor)
	putWord(img, wordChecksum, Checksum(img[:wordChecksum*2]))
	return img
}

func decodePID(img []byte, base int) PIDParams {
	return PIDParams{
		KP:   int16(word(img, base)),
		KI:   int16(word(img, base+1)),
		KD:   int16(word(img, base+2)),
		KDiv: word(img, base+3),
		UMul: word(img, base+6),
		UDiv: word(img, base+7),
	}
}

func encodePID(img []byte, base int, p *PIDParams) {
	putWord(img, base, uint16(p.KP))
	putWord(img, base+1, uint16(p.KI))
	putWord(img, base+2, uint16(p.KD))
	putWord(img, base+3, p.KDiv)
	putWord(img, base+4, 0)
	putWord(img, base+5, 0)
	putWord(img, base+6, p.UMul)
	putWord(img, base+7, p.UDiv)
}

func word(img []byte, n int) uint16 {
	return binary.LittleEndian.Uint16(img[n*2:])
}

func putWord(img []byte, n int, v uint16) {
	binary.LittleEndian.PutUint16(img[n*2:], v)
}

// Store reads the image from a byte-addressable device (EEPROM, flash, file)
type Store struct {
	dev    io.ReaderAt
	offset int64
}

// NewStore returns a store reading the image at offset
func NewStore(dev io.ReaderAt, offset int64) *Store {
	return &Store{dev: dev, offset: offset}
}

// Load reads and decodes the whole image in one pass
func (s *Store) Load() (*Config, error) {
	img := make([]byte, ImageSize)
	n, err := s.dev.ReadAt(img, s.offset)
	if n < ImageSize {
		if err == nil || err == io.EOF {
			err = ErrShortImage
		}
		return nil, err
	}
	return Decode(img)
}

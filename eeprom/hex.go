package eeprom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Intel HEX record types
const (
	recordData = 0x00
	recordEOF  = 0x01
)

// HexRecordSize is the number of data bytes per record, as programmers expect
const HexRecordSize = 32

var ErrHexEOF = errors.New("eeprom: hex file has no end-of-file record")

// WriteHex writes img as Intel HEX data records starting at address 0,
// followed by the end-of-file record.
func WriteHex(w io.Writer, img []byte) error {
	bw := bufio.NewWriter(w)
	for offset := 0; offset < len(img); offset += HexRecordSize {
		end := offset + HexRecordSize
		if end > len(img) {
			end = len(img)
		}
		if err := writeRecord(bw, uint16(offset), recordData, img[offset:end]); err != nil {
			return err
		}
	}
	if err := writeRecord(bw, 0, recordEOF, nil); err != nil {
		return err
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, addr uint16, kind byte, data []byte) error {
	sum := byte(len(data)) + byte(addr>>8) + byte(addr) + kind
	if _, err := fmt.Fprintf(w, ":%02X%04X%02X", len(data), addr, kind); err != nil {
		return err
	}
	for _, b := range data {
		sum += b
		if _, err := fmt.Fprintf(w, "%02X", b); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%02X\n", -sum)
	return err
}

// ReadHex parses Intel HEX data records into a flat image. Gaps read as 0xFF,
// the erased state of EEPROM.
func ReadHex(r io.Reader) ([]byte, error) {
	var img []byte
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("eeprom: hex line %d: %w", line, err)
		}
		switch rec.kind {
		case recordEOF:
			return img, nil
		case recordData:
			end := int(rec.addr) + len(rec.data)
			for len(img) < end {
				img = append(img, 0xFF)
			}
			copy(img[rec.addr:], rec.data)
		default:
			return nil, fmt.Errorf("eeprom: hex line %d: unsupported record type %02X", line, rec.kind)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, ErrHexEOF
}

type hexRecord struct {
	addr uint16
	kind byte
	data []byte
}

func parseRecord(text string) (hexRecord, error) {
	if len(text) < 11 || text[0] != ':' || len(text)%2 == 0 {
		return hexRecord{}, errors.New("malformed record")
	}
	raw := make([]byte, (len(text)-1)/2)
	for i := range raw {
		v, err := strconv.ParseUint(text[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return hexRecord{}, err
		}
		raw[i] = byte(v)
	}

	n := int(raw[0])
	if len(raw) != n+5 {
		return hexRecord{}, errors.New("record length mismatch")
	}
	var sum byte
	for _, b := range raw {
		sum += b
	}
	if sum != 0 {
		return hexRecord{}, errors.New("record checksum mismatch")
	}
	return hexRecord{
		addr: uint16(raw[1])<<8 | uint16(raw[2]),
		kind: raw[3],
		data: raw[4 : 4+n],
	}, nil
}

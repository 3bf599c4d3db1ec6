package eeprom

// Checksum is the CRC16-CCITT variant used by Klipper-style firmware
// (initial value 0xFFFF, reflected nibble update, no final xor).
func Checksum(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}

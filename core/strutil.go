package core

// itoa formats an integer without pulling in fmt
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}

// utoa formats an unsigned integer
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// hex16 formats a 16-bit value as 0xNNNN
func hex16(v uint16) string {
	const digits = "0123456789abcdef"
	buf := [6]byte{'0', 'x'}
	for i := 0; i < 4; i++ {
		buf[5-i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[:])
}

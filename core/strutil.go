package core

// utoa converts an unsigned integer to a string without the fmt package,
// which is too large for the AVR flash budget.
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

// quote wraps s in double quotes, escaping backslashes and quotes, so a
// record value can carry spaces. Newlines become spaces to keep the record
// on one line.
func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			out = append(out, '\\', c)
		case '\n':
			out = append(out, ' ')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}

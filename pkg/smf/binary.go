package smf

import "fmt"

const maxVarLen = 0x0FFFFFFF

// ReadBigEndian decodes a 1, 2 or 4 byte big-endian word.
// Any other length is a caller bug and panics.
func ReadBigEndian(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(b[0])<<8 | uint32(b[1])
	case 4:
		return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	}
	panic(fmt.Sprintf("smf: big-endian word of %d bytes", len(b)))
}

// ReadVarLen returns the variable length value at data[pos] and the number of
// bytes it occupies. At most 4 bytes are read.
func ReadVarLen(data []byte, pos int) (val uint32, n int, err error) {
	for n < 4 {
		if pos+n >= len(data) {
			return 0, n, fmt.Errorf("%w: variable length quantity at offset %d", ErrTruncatedStream, pos)
		}
		b := data[pos+n]
		n++
		val = val<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return val, n, nil
		}
	}
	return 0, n, fmt.Errorf("%w: variable length quantity at offset %d exceeds 4 bytes", ErrMalformedStream, pos)
}

// AppendVarLen appends v in variable length encoding.
// Values above 2^28-1 cannot be encoded and panic.
func AppendVarLen(dst []byte, v uint32) []byte {
	if v > maxVarLen {
		panic(fmt.Sprintf("smf: variable length value %d out of range", v))
	}
	var buf [4]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7F) | 0x80
	}
	return append(dst, buf[i:]...)
}

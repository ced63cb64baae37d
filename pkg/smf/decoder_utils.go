package smf

import "fmt"

// readByte consumes one byte of the current chunk.
func (d *Decoder) readByte() (byte, error) {
	if d.offset >= d.end {
		return 0, fmt.Errorf("%w: event at offset %d runs past its chunk", ErrTruncatedStream, d.offset)
	}
	b := d.data[d.offset]
	d.offset++
	return b, nil
}

func (d *Decoder) uint7() (uint8, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	return b & 0x7f, nil
}

// varLen returns the variable length value at the exact parser location.
func (d *Decoder) varLen() (uint32, error) {
	val, n, err := ReadVarLen(d.data[:d.end], d.offset)
	if err != nil {
		return 0, err
	}
	d.offset += n
	return val, nil
}

// varLenData reads a length prefixed payload and returns a copy of it.
func (d *Decoder) varLenData() ([]byte, error) {
	l, err := d.varLen()
	if err != nil {
		return nil, err
	}
	if int(l) > d.end-d.offset {
		return nil, fmt.Errorf("%w: %d byte payload at offset %d", ErrTruncatedStream, l, d.offset)
	}
	buf := make([]byte, l)
	copy(buf, d.data[d.offset:])
	d.offset += int(l)
	return buf, nil
}

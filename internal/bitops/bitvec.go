package bitops

import (
	"errors"
	"fmt"
)

// ErrMalformedBitVector is returned when a bit vector holds a value other
// than 0 or 1, or has a length the requested conversion cannot represent.
var ErrMalformedBitVector = errors.New("malformed bit vector")

// BitsFromUint64 expands the low width bits of v into a bit vector.
// Index 0 holds the most significant bit.
func BitsFromUint64(v uint64, width int) []uint8 {
	out := make([]uint8, width)
	for i := 0; i < width; i++ {
		out[i] = uint8(v>>uint(width-1-i)) & 1
	}
	return out
}

// Uint64FromBits packs an MSB-first bit vector of at most 64 elements.
func Uint64FromBits(b []uint8) (uint64, error) {
	if len(b) > 64 {
		return 0, fmt.Errorf("%w: %d bits do not fit in 64",
			ErrMalformedBitVector, len(b))
	}

	var v uint64
	for i, bit := range b {
		if bit > 1 {
			return 0, fmt.Errorf("%w: element %d is %d",
				ErrMalformedBitVector, i, bit)
		}
		v = v<<1 | uint64(bit)
	}
	return v, nil
}

// BitsFromBytes expands b into 8*len(b) bits, MSB of b[0] first.
func BitsFromBytes(b []byte) []uint8 {
	out := make([]uint8, 0, len(b)*8)
	for _, x := range b {
		out = append(out, BitsFromUint64(uint64(x), 8)...)
	}
	return out
}

// BytesFromBits packs an MSB-first bit vector whose length is a multiple
// of 8.
func BytesFromBits(b []uint8) ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 8",
			ErrMalformedBitVector, len(b))
	}

	out := make([]byte, len(b)/8)
	for i := range out {
		v, err := Uint64FromBits(b[i*8 : i*8+8])
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

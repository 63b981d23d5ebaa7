package crypto

import (
	"errors"
	"fmt"

	"cipherlab/internal/bitops"
)

var (
	// ErrInvalidBlockWidth is returned when a block is not exactly the
	// cipher's declared block size.
	ErrInvalidBlockWidth = errors.New("invalid block width")

	// ErrInvalidKeyWidth is returned when a key length is not one of the
	// cipher's supported key sizes.
	ErrInvalidKeyWidth = errors.New("invalid key width")

	// ErrMalformedBitVector is returned when a bit-array input contains
	// values other than 0 and 1.
	ErrMalformedBitVector = bitops.ErrMalformedBitVector

	// ErrInvalidRoundCount is returned for a reduced-round AES engine
	// outside 1..10 rounds.
	ErrInvalidRoundCount = errors.New("invalid round count")

	// ErrUnknownCipher is returned by ParseID and Lookup.
	ErrUnknownCipher = errors.New("unknown cipher")
)

func blockWidthError(name string, gotBits, wantBits int) error {
	return fmt.Errorf("%s: %w: got %d bits, want %d", name,
		ErrInvalidBlockWidth, gotBits, wantBits)
}

func keyWidthError(name string, gotBits int, supported []int) error {
	return fmt.Errorf("%s: %w: got %d bits, supported %v", name,
		ErrInvalidKeyWidth, gotBits, supported)
}

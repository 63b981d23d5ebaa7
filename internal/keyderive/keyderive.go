// Package keyderive turns passphrases into cipher keys with scrypt.
package keyderive

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// ErrInvalidWidth is returned for key widths that are not a positive
// multiple of 8 bits.
var ErrInvalidWidth = errors.New("keyderive: key width must be a positive " +
	"multiple of 8 bits")

// Params are the scrypt cost parameters.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams are the interactive-login costs recommended for scrypt.
var DefaultParams = Params{N: 1 << 15, R: 8, P: 1}

// FromPassphrase derives a key of bits bits with DefaultParams.
func FromPassphrase(pass, salt []byte, bits int) ([]byte, error) {
	return Derive(pass, salt, bits, DefaultParams)
}

// Derive derives a key of bits bits with explicit cost parameters.
func Derive(pass, salt []byte, bits int, p Params) ([]byte, error) {
	if bits <= 0 || bits%8 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, bits)
	}

	key, err := scrypt.Key(pass, salt, p.N, p.R, p.P, bits/8)
	if err != nil {
		return nil, fmt.Errorf("keyderive: scrypt: %w", err)
	}
	return key, nil
}

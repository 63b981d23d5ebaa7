// Package bitops holds the fixed-width word arithmetic shared by the cipher
// engines: rotations, modular addition and the canonical bit-vector layout.
package bitops

import "math/bits"

// mask returns the low width bits set.
func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// RotateLeft rotates the low width bits of x left by n positions.
// Bits of x above width are discarded. width must be in [1, 64].
func RotateLeft(x uint64, n, width uint) uint64 {
	if width == 0 || width > 64 {
		panic("bitops: rotation width out of range")
	}
	x &= mask(width)
	n %= width
	if n == 0 {
		return x
	}
	return ((x << n) | (x >> (width - n))) & mask(width)
}

// RotateRight rotates the low width bits of x right by n positions.
func RotateRight(x uint64, n, width uint) uint64 {
	if width == 0 || width > 64 {
		panic("bitops: rotation width out of range")
	}
	return RotateLeft(x, width-n%width, width)
}

// RotateLeft32 rotates a 32-bit word left. Negative counts rotate right.
func RotateLeft32(x uint32, n int) uint32 {
	return bits.RotateLeft32(x, n)
}

// RotateRight32 rotates a 32-bit word right.
func RotateRight32(x uint32, n int) uint32 {
	return bits.RotateLeft32(x, -n)
}

// AddMod returns (a + b) mod m for m > 0. Operands are reduced first so the
// sum never exceeds 2m-2, and the carry of the 64-bit add is handled.
func AddMod(a, b, m uint64) uint64 {
	if m == 0 {
		panic("bitops: zero modulus")
	}
	a, b = a%m, b%m
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 || sum >= m {
		sum -= m
	}
	return sum
}

// SubMod returns (a - b) mod m for m > 0, always in [0, m).
func SubMod(a, b, m uint64) uint64 {
	if m == 0 {
		panic("bitops: zero modulus")
	}
	a, b = a%m, b%m
	if a >= b {
		return a - b
	}
	return m - (b - a)
}

// AddMod32 is addition modulo 2^32. Go defines unsigned overflow as
// wraparound, which is exactly reduction by 2^32.
func AddMod32(a, b uint32) uint32 {
	return a + b
}

// SubMod32 is subtraction modulo 2^32.
func SubMod32(a, b uint32) uint32 {
	return a - b
}

// HammingWeight returns the number of set bits in b.
func HammingWeight(b byte) int {
	return bits.OnesCount8(b)
}

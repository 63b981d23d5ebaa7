// Package gf implements the small binary-field multiplications used by the
// diffusion layers: GF(2^8) modulo x^8+x^4+x^3+x+1 (AES) and GF(2^4) modulo
// x^4+x+1 (Piccolo).
package gf

const (
	// Poly8 is the AES reduction polynomial.
	Poly8 = 0x11B

	// Poly4 is the Piccolo reduction polynomial.
	Poly4 = 0x13
)

// mul multiplies a and b in GF(2^degree) with the given reduction
// polynomial by shift-and-add, reducing whenever the top bit overflows.
func mul(a, b uint16, poly uint16, degree uint) uint16 {
	top := uint16(1) << degree
	var r uint16
	for b != 0 {
		if b&1 != 0 {
			r ^= a
		}
		a <<= 1
		if a&top != 0 {
			a ^= poly
		}
		b >>= 1
	}
	return r
}

// Mul8 multiplies two elements of GF(2^8).
func Mul8(a, b byte) byte {
	return byte(mul(uint16(a), uint16(b), Poly8, 8))
}

// Mul4 multiplies two elements of GF(2^4). Only the low nibbles are used.
func Mul4(a, b byte) byte {
	return byte(mul(uint16(a&0xF), uint16(b&0xF), Poly4, 4))
}

// XTime multiplies by x (0x02) in GF(2^8).
func XTime(a byte) byte {
	r := a << 1
	if a&0x80 != 0 {
		r ^= Poly8 & 0xFF
	}
	return r
}

// Inverse8 returns the multiplicative inverse of a in GF(2^8), computed as
// a^254. Zero maps to zero, matching the AES S-box convention.
func Inverse8(a byte) byte {
	r := byte(1)
	p := a
	for e := 254; e > 0; e >>= 1 {
		if e&1 != 0 {
			r = Mul8(r, p)
		}
		p = Mul8(p, p)
	}
	return r
}

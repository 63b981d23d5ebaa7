package crypto

import (
	"encoding/binary"
	"fmt"

	"cipherlab/internal/bitops"
)

const leaBlockSize = 16

var leaParams = Params{
	Name:      "LEA",
	BlockBits: 128,
	Variants: []Variant{
		{KeyBits: 128, Rounds: 24},
		{KeyBits: 192, Rounds: 28},
		{KeyBits: 256, Rounds: 32},
	},
}

type leaEngine struct{}

func (leaEngine) Params() Params { return leaParams }

func (leaEngine) NewCipher(key []byte) (Block, error) {
	c, err := NewLEA(key)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LEACipher is LEA keyed with a 128, 192 or 256-bit key. Each round uses six
// 32-bit round-key words.
type LEACipher struct {
	keyBits int
	rk      [][6]uint32
}

// NewLEA reads key as big-endian 32-bit words, most significant word first,
// and runs the key schedule.
func NewLEA(key []byte) (*LEACipher, error) {
	if _, err := checkKey(leaParams, key); err != nil {
		return nil, err
	}

	words := make([]uint32, len(key)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(key[4*i:])
	}
	return NewLEAFromWords(words)
}

// NewLEAFromWords keys LEA with 4, 6 or 8 key words.
func NewLEAFromWords(key []uint32) (*LEACipher, error) {
	v, ok := leaParams.Variant(len(key) * 32)
	if !ok {
		return nil, keyWidthError(leaParams.Name, len(key)*32,
			leaParams.KeyBits())
	}

	c := &LEACipher{
		keyBits: v.KeyBits,
		rk:      leaKeySchedule(key, v.Rounds),
	}
	logSchedule(c)
	return c, nil
}

// leaKeySchedule expands 4, 6 or 8 key words into one six-word round key per
// round.
func leaKeySchedule(key []uint32, rounds int) [][6]uint32 {
	var T [8]uint32
	copy(T[:], key)
	c := len(key)

	rk := make([][6]uint32, rounds)
	for i := 0; i < rounds; i++ {
		d := leaKeyDelta[i%c]

		switch c {
		case 4:
			for j := 0; j < 4; j++ {
				T[j] = bitops.RotateLeft32(
					T[j]+bitops.RotateLeft32(d, i+j), leaKeyShifts[j],
				)
			}
			rk[i] = [6]uint32{T[0], T[1], T[2], T[1], T[3], T[1]}

		case 6:
			for j := 0; j < 6; j++ {
				T[j] = bitops.RotateLeft32(
					T[j]+bitops.RotateLeft32(d, i+j), leaKeyShifts[j],
				)
			}
			copy(rk[i][:], T[:6])

		case 8:
			for j := 0; j < 6; j++ {
				idx := (6*i + j) % 8
				T[idx] = bitops.RotateLeft32(
					T[idx]+bitops.RotateLeft32(d, i+j), leaKeyShifts[j],
				)
				rk[i][j] = T[idx]
			}
		}
	}
	return rk
}

func (c *LEACipher) name() string {
	return fmt.Sprintf("LEA-%d", c.keyBits)
}

// Rounds returns 24, 28 or 32 depending on the key size.
func (c *LEACipher) Rounds() int { return len(c.rk) }

func (c *LEACipher) encryptWords(x [4]uint32, observe func(int, [4]uint32)) [4]uint32 {
	if observe != nil {
		observe(0, x)
	}
	for r, k := range c.rk {
		x = [4]uint32{
			bitops.RotateLeft32((x[0]^k[0])+(x[1]^k[1]), 9),
			bitops.RotateRight32((x[1]^k[2])+(x[2]^k[3]), 5),
			bitops.RotateRight32((x[2]^k[4])+(x[3]^k[5]), 3),
			x[0],
		}
		if observe != nil {
			observe(r+1, x)
		}
	}
	return x
}

// EncryptWords encrypts one block given as four words, X0 first.
func (c *LEACipher) EncryptWords(x [4]uint32) [4]uint32 {
	return c.encryptWords(x, nil)
}

// DecryptWords inverts EncryptWords.
func (c *LEACipher) DecryptWords(x [4]uint32) [4]uint32 {
	for r := len(c.rk) - 1; r >= 0; r-- {
		k := c.rk[r]

		t0 := x[3]
		t1 := (bitops.RotateRight32(x[0], 9) - (t0 ^ k[0])) ^ k[1]
		t2 := (bitops.RotateLeft32(x[1], 5) - (t1 ^ k[2])) ^ k[3]
		t3 := (bitops.RotateLeft32(x[2], 3) - (t2 ^ k[4])) ^ k[5]

		x = [4]uint32{t0, t1, t2, t3}
	}
	return x
}

func leaLoad(b []byte) [4]uint32 {
	return [4]uint32{
		binary.BigEndian.Uint32(b[0:]),
		binary.BigEndian.Uint32(b[4:]),
		binary.BigEndian.Uint32(b[8:]),
		binary.BigEndian.Uint32(b[12:]),
	}
}

func leaStore(b []byte, x [4]uint32) {
	for i, w := range x {
		binary.BigEndian.PutUint32(b[4*i:], w)
	}
}

func (c *LEACipher) BlockSize() int { return leaBlockSize }

func (c *LEACipher) Encrypt(dst, src []byte) {
	checkFull("crypto/lea", leaBlockSize, dst, src)
	leaStore(dst, c.encryptWords(leaLoad(src), nil))
}

func (c *LEACipher) Decrypt(dst, src []byte) {
	checkFull("crypto/lea", leaBlockSize, dst, src)
	leaStore(dst, c.DecryptWords(leaLoad(src)))
}

// RoundKeys returns a copy of the per-round key words.
func (c *LEACipher) RoundKeys() [][6]uint32 {
	out := make([][6]uint32, len(c.rk))
	copy(out, c.rk)
	return out
}

func (c *LEACipher) Schedule() Schedule {
	keys := make([][]byte, len(c.rk))
	for i, k := range c.rk {
		b := make([]byte, 0, 24)
		for _, w := range k {
			b = binary.BigEndian.AppendUint32(b, w)
		}
		keys[i] = b
	}
	return Schedule{
		Cipher:    c.name(),
		Rounds:    len(c.rk),
		RoundKeys: keys,
	}
}

func (c *LEACipher) Trace(src []byte) []RoundState {
	checkFull("crypto/lea", leaBlockSize, src, src)

	states := make([]RoundState, 0, len(c.rk)+1)
	c.encryptWords(leaLoad(src), func(r int, x [4]uint32) {
		b := make([]byte, leaBlockSize)
		leaStore(b, x)
		states = append(states, RoundState{Round: r, State: b})
	})
	return states
}
